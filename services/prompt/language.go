package prompt

import "fmt"

// Language selects the locale of both the instructions and the generated prompt.
type Language uint8

const (
	Japanese Language = iota
	English

	languageCount
)

var languageCodes = [languageCount]string{
	Japanese: "ja",
	English:  "en",
}

// DefaultLanguage is used when a request does not name one.
const DefaultLanguage = Japanese

func (l Language) String() string {
	if !l.IsValid() {
		return fmt.Sprintf("Language(%d)", uint8(l))
	}
	return languageCodes[l]
}

func (l Language) IsValid() bool {
	return l < languageCount
}

// ParseLanguage maps a locale code to a Language. An empty code yields DefaultLanguage.
func ParseLanguage(code string) (Language, error) {
	if code == "" {
		return DefaultLanguage, nil
	}
	for lang, langCode := range languageCodes {
		if langCode == code {
			return Language(lang), nil
		}
	}

	return 0, fmt.Errorf("unsupported output language %q", code)
}

func (l Language) MarshalText() ([]byte, error) {
	if !l.IsValid() {
		return nil, fmt.Errorf("unsupported output language %d", uint8(l))
	}
	return []byte(languageCodes[l]), nil
}

func (l *Language) UnmarshalText(text []byte) error {
	lang, err := ParseLanguage(string(text))
	if err != nil {
		return err
	}
	*l = lang

	return nil
}
