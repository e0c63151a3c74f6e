package config

import (
	"bytes"
	"flag"
	"io"
	"os"

	"github.com/luno/jettison/errors"
	"github.com/luno/jettison/j"
	"gopkg.in/yaml.v3"
)

var configFile = flag.String("config", "", "path to a config yaml")

var (
	ErrEmptyTableName = errors.New("table name is empty", j.C("ERR_9b1f0e2c4d7a6358"))
	ErrDuplicateTable = errors.New("duplicate table", j.C("ERR_2e64c7d0a3b9f1e5"))
)

type Config struct {
	Tables []Table `yaml:"tables"`
}

type Table struct {
	Name    string   `yaml:"name"`
	Choices []Choice `yaml:"choices"`
}

// Choice with a non-positive weight is accepted and dropped when the
// table is built.
type Choice struct {
	Value  string `yaml:"value"`
	Weight int    `yaml:"weight"`
}

func (c Config) Validate() error {
	seen := make(map[string]bool)
	for _, t := range c.Tables {
		if t.Name == "" {
			return ErrEmptyTableName
		}
		if seen[t.Name] {
			return errors.Wrap(ErrDuplicateTable, "", j.KV("table", t.Name))
		}
		seen[t.Name] = true
	}
	return nil
}

var config = Config{}

func MustLoadConfig() {
	if *configFile == "" {
		return
	}
	c, err := os.ReadFile(*configFile)
	if err != nil {
		panic(err)
	}
	config, err = decodeConfig(c)
	if err != nil {
		panic(err)
	}
}

func GetConfig() Config {
	return config
}

func decodeConfig(content []byte) (Config, error) {
	var c Config
	d := yaml.NewDecoder(bytes.NewReader(content))
	d.KnownFields(true)
	err := d.Decode(&c)
	if errors.Is(err, io.EOF) {
		return c, nil
	} else if err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}
