package prompt

import "strings"

type promptTemplate struct {
	system string

	purposeLabel  string
	sceneLabel    string
	styleLabel    string
	durationLabel string
	extraLabel    string

	closing string
}

var templates = [languageCount]promptTemplate{
	Japanese: {
		system: `あなたは動画生成AI向けプロンプトの専門家です。ユーザーの要望をもとに、動画生成AIが高品質な動画を生成できる詳細なプロンプトを作成してください。

以下のガイドラインに従ってください:
1. 被写体や背景など、視覚的な要素を具体的に描写する
2. カメラワーク、照明、雰囲気を明記する
3. 時間の流れや動きを表現する
4. 色調やスタイルを指定する
5. 150〜300語程度にまとめる

プロンプトは日本語で出力してください。説明文は不要です。プロンプトのみを出力してください。`,
		purposeLabel:  "目的",
		sceneLabel:    "シーン",
		styleLabel:    "スタイル",
		durationLabel: "長さ",
		extraLabel:    "その他の要望",
		closing:       "上記の内容をもとに、動画生成AI用のプロンプトを作成してください。",
	},
	English: {
		system: `You are an expert in writing prompts for video generation AI. Based on the user's request, write a detailed prompt that lets a video generation AI produce a high-quality video.

Follow these guidelines:
1. Describe visual elements such as subjects and backgrounds concretely
2. Specify camera work, lighting and mood
3. Express the passage of time and motion
4. Specify the color palette and style
5. Keep it to roughly 150-300 words

Write the prompt in English. Do not include any explanation. Output only the prompt.`,
		purposeLabel:  "Purpose",
		sceneLabel:    "Scene",
		styleLabel:    "Style",
		durationLabel: "Duration",
		extraLabel:    "Additional requirements",
		closing:       "Based on the above, create a prompt for a video generation AI.",
	},
}

func templateFor(lang Language) promptTemplate {
	if !lang.IsValid() {
		lang = DefaultLanguage
	}
	return templates[lang]
}

// BuildSystemPrompt returns the fixed instructions for the given output language.
func BuildSystemPrompt(lang Language) string {
	return templateFor(lang).system
}

// BuildUserPrompt lists the present request fields as "Label: value" lines in a fixed order,
// followed by the closing instruction of the request's language.
func BuildUserPrompt(req Request) string {
	tmpl := templateFor(req.OutputLanguage)

	var builder strings.Builder
	writeLine := func(label, value string) {
		if strings.TrimSpace(value) == "" {
			return
		}
		builder.WriteString(label)
		builder.WriteString(": ")
		builder.WriteString(value)
		builder.WriteString("\n")
	}

	writeLine(tmpl.purposeLabel, req.Purpose)
	writeLine(tmpl.sceneLabel, req.SceneDescription)
	writeLine(tmpl.styleLabel, req.Style)
	writeLine(tmpl.durationLabel, req.Duration)
	writeLine(tmpl.extraLabel, req.AdditionalRequirements)

	builder.WriteString("\n")
	builder.WriteString(tmpl.closing)

	return builder.String()
}
