package prompt

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type formFile struct {
	Mode string `yaml:"mode"`
	Form `yaml:",inline"`
}

// LoadForm reads a YAML form file.
func LoadForm(path string) (Form, Mode, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Form{}, "", fmt.Errorf("read form: %w", err)
	}
	return ParseForm(data)
}

func ParseForm(data []byte) (Form, Mode, error) {
	var ff formFile
	if err := yaml.Unmarshal(data, &ff); err != nil {
		return Form{}, "", fmt.Errorf("parse form: %w", err)
	}
	mode, err := ParseMode(ff.Mode)
	if err != nil {
		return Form{}, "", err
	}
	return ff.Form, mode, nil
}
