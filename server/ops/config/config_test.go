package config

import (
	"testing"

	"github.com/luno/jettison/jtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeConfig(t *testing.T) {
	testCases := []struct {
		name      string
		yaml      string
		expConfig Config
		expError  bool
	}{
		{name: "empty"},
		{name: "single table",
			yaml: `
tables:
  - name: "enemies"
    choices:
      - value: "goblin"
        weight: 10
      - value: "troll"
        weight: 1
`,
			expConfig: Config{Tables: []Table{
				{Name: "enemies", Choices: []Choice{
					{Value: "goblin", Weight: 10},
					{Value: "troll", Weight: 1},
				}},
			}},
		},
		{name: "zero weight kept",
			yaml: `
tables:
  - name: "props"
    choices:
      - value: "barrel"
        weight: 0
`,
			expConfig: Config{Tables: []Table{
				{Name: "props", Choices: []Choice{{Value: "barrel"}}},
			}},
		},
		{name: "unknown field",
			yaml: `
nottables:
  - name: "enemies"
`,
			expError: true,
		},
		{name: "missing name",
			yaml: `
tables:
  - choices: []
`,
			expError: true,
		},
		{name: "duplicate name",
			yaml: `
tables:
  - name: "a"
  - name: "a"
`,
			expError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := decodeConfig([]byte(tc.yaml))
			require.Equal(t, tc.expError, err != nil)
			assert.Equal(t, tc.expConfig, c)
		})
	}
}

func TestValidate(t *testing.T) {
	c := Config{Tables: []Table{{Name: "a"}, {Name: "b"}, {Name: "a"}}}
	jtest.Assert(t, ErrDuplicateTable, c.Validate())

	c = Config{Tables: []Table{{Name: ""}}}
	jtest.Assert(t, ErrEmptyTableName, c.Validate())

	c = Config{Tables: []Table{{Name: "a"}, {Name: "b"}}}
	jtest.RequireNil(t, c.Validate())
}
