package prompt

// Request describes the video a prompt should be written for. Lengths are counted in runes.
type Request struct {
	Purpose                string   `json:"purpose" validate:"required,not_blank,max=500"`
	SceneDescription       string   `json:"scene_description" validate:"required,not_blank,max=1000"`
	Style                  string   `json:"style,omitempty" validate:"max=200"`
	Duration               string   `json:"duration,omitempty" validate:"max=100"`
	AdditionalRequirements string   `json:"additional_requirements,omitempty" validate:"max=500"`
	OutputLanguage         Language `json:"output_language" validate:"valid_enum"`
}
