package config

var Presets = map[string]map[string]*Config{
	"pendulum": {
		"drop": {
			Scenario: "pendulum", Segments: 1, Length: 1.0, Mass: 1.0,
			Dt: 0.005, Duration: 5.0, Normalize: true,
		},
		"stabilized": {
			Scenario: "pendulum", Segments: 1, Length: 1.0, Mass: 1.0,
			Dt: 0.005, Duration: 20.0, Normalize: true,
			Stabilization: StabilizationConfig{Alpha: 20.0, Beta: 10.0},
		},
		"long": {
			Scenario: "pendulum", Segments: 1, Length: 2.0, Mass: 3.0,
			Dt: 0.005, Duration: 10.0, Normalize: true,
		},
	},
	"double_pendulum": {
		"drop": {
			Scenario: "double_pendulum", Segments: 2, Length: 1.0, Mass: 1.0,
			Dt: 0.002, Duration: 10.0, Normalize: true,
		},
		"stabilized": {
			Scenario: "double_pendulum", Segments: 2, Length: 1.0, Mass: 1.0,
			Dt: 0.002, Duration: 30.0, Normalize: true,
			Stabilization: StabilizationConfig{Alpha: 20.0, Beta: 10.0},
		},
	},
	"chain": {
		"short": {
			Scenario: "chain", Segments: 3, Length: 0.5, Mass: 0.5,
			Dt: 0.002, Duration: 5.0, Normalize: true,
			Stabilization: StabilizationConfig{Alpha: 20.0, Beta: 10.0},
		},
		"long": {
			Scenario: "chain", Segments: 6, Length: 0.5, Mass: 0.5,
			Dt: 0.001, Duration: 5.0, Normalize: true,
			Stabilization: StabilizationConfig{Alpha: 20.0, Beta: 10.0},
		},
	},
}

func GetPreset(scenario, preset string) *Config {
	scenarioPresets, ok := Presets[scenario]
	if !ok {
		return nil
	}
	cfg, ok := scenarioPresets[preset]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets(scenario string) []string {
	scenarioPresets, ok := Presets[scenario]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(scenarioPresets))
	for name := range scenarioPresets {
		names = append(names, name)
	}
	return names
}
