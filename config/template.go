package config

import (
	"io/ioutil"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

type templateSource struct {
	Host     string `yaml:"host"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

type templateSnowflake struct {
	Account   string `yaml:"account"`
	User      string `yaml:"user"`
	Password  string `yaml:"password"`
	Role      string `yaml:"role"`
	Warehouse string `yaml:"warehouse"`
	Database  string `yaml:"database"`
}

type templateTransfer struct {
	SourceTable string `yaml:"source_table"`
	Mode        string `yaml:"mode"`
}

type template struct {
	DatabaseType string            `yaml:"database_type"`
	Source       templateSource    `yaml:"source"`
	Snowflake    templateSnowflake `yaml:"snowflake"`
	Transfer     templateTransfer  `yaml:"transfer"`
}

// TemplateYAML returns a starter settings file with placeholder values.
func TemplateYAML() ([]byte, error) {
	t := template{
		DatabaseType: string(SqlServer),
		Source: templateSource{
			Host:     "your-server.database.windows.net",
			Username: "your-username",
			Password: "your-password",
			Database: "your-database",
		},
		Snowflake: templateSnowflake{
			Account:   "your-account",
			User:      "your-user",
			Password:  "your-password",
			Role:      "ACCOUNTADMIN",
			Warehouse: "COMPUTE_WH",
			Database:  "your-database",
		},
		Transfer: templateTransfer{
			SourceTable: "your-table",
			Mode:        "overwrite",
		},
	}
	return yaml.Marshal(t)
}

// WriteTemplate saves TemplateYAML to fileName.
func WriteTemplate(fileName string) error {
	b, err := TemplateYAML()
	if err != nil {
		return errors.Wrap(err, "unable to render config template")
	}
	if err = ioutil.WriteFile(fileName, b, 0644); err != nil {
		return errors.Wrapf(err, "unable to write config template to %q", fileName)
	}
	return nil
}
