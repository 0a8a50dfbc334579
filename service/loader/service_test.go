package loader

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/afs"
	"github.com/viant/simrun/model"
)

const yamlConfig = `
rngSeed: 42
duration: 180
durationVariance: 15
targets: 1
players:
  - name: mage
    level: 60
    power: 620
    variance: 0.12
  - name: warlock
    power: 580
debuffs:
  curseOfElements: true
`

const jsonConfig = `{"rngSeed": 7, "duration": 60, "players": [{"name": "priest", "power": 300}]}`

func TestService_Load(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	assert.NoError(t, fs.Upload(ctx, "mem://localhost/sim/fire.yaml", 0644, strings.NewReader(yamlConfig)))
	assert.NoError(t, fs.Upload(ctx, "mem://localhost/sim/priest.json", 0644, strings.NewReader(jsonConfig)))
	srv := New(fs, "mem://localhost/sim")

	var testCases = []struct {
		description string
		URL         string
		overrides   []string
		expect      *model.SimConfig
	}{
		{
			description: "yaml",
			URL:         "fire.yaml",
			expect: &model.SimConfig{
				RngSeed: 42, Duration: 180, DurationVariance: 15, Targets: 1,
				Players: []*model.Player{{Name: "mage", Level: 60, Power: 620, Variance: 0.12}, {Name: "warlock", Power: 580}},
				Debuffs: map[string]bool{"curseOfElements": true},
			},
		},
		{
			description: "json with absolute url",
			URL:         "mem://localhost/sim/priest.json",
			expect:      &model.SimConfig{RngSeed: 7, Duration: 60, Players: []*model.Player{{Name: "priest", Power: 300}}},
		},
		{
			description: "overrides",
			URL:         "priest.json",
			overrides:   []string{"rngSeed=0", "players.0.power=450"},
			expect:      &model.SimConfig{Duration: 60, Players: []*model.Player{{Name: "priest", Power: 450}}},
		},
	}
	for _, testCase := range testCases {
		actual, err := srv.Load(ctx, testCase.URL, testCase.overrides...)
		if !assert.NoError(t, err, testCase.description) {
			continue
		}
		assert.EqualValues(t, testCase.expect, actual, testCase.description)
	}

	_, err := srv.Load(ctx, "missing.yaml")
	assert.Error(t, err)
}

func TestDecode(t *testing.T) {
	document, err := Decode(".yml", []byte("duration: 10"))
	assert.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"duration": 10}, document)
	_, err = Decode(".toml", []byte("duration = 10"))
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
	_, err = Decode(".json", []byte("{"))
	assert.Error(t, err)
}

func TestOverride(t *testing.T) {
	document := map[string]interface{}{"players": []interface{}{map[string]interface{}{"power": 1}}}
	assert.NoError(t, Override(document, "debuffs.curseOfShadows=true"))
	assert.NoError(t, Override(document, "players.0.name=mage"))
	assert.Equal(t, map[string]interface{}{
		"players": []interface{}{map[string]interface{}{"power": 1, "name": "mage"}},
		"debuffs": map[string]interface{}{"curseOfShadows": true},
	}, document)

	assert.True(t, errors.Is(Override(document, "novalue"), ErrInvalidOverride))
	assert.True(t, errors.Is(Override(document, "=1"), ErrInvalidOverride))
	assert.True(t, errors.Is(Override(document, "players.3.power=1"), ErrInvalidOverride))
	assert.True(t, errors.Is(Override(document, "players.0.power.x=1"), ErrInvalidOverride))
}

func TestService_Load_Env(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	assert.NoError(t, fs.Upload(ctx, "mem://localhost/env/sim.yaml", 0644, strings.NewReader("rngSeed: ${env.SEED}\nduration: 30\n")))
	srv := New(fs, "mem://localhost/env")
	srv.env = func(key string) string {
		if key == "SEED" {
			return "99"
		}
		return ""
	}
	actual, err := srv.Load(ctx, "sim.yaml")
	if assert.NoError(t, err) {
		assert.EqualValues(t, 99, actual.RngSeed)
		assert.EqualValues(t, 30, actual.Duration)
	}
}
