package config

type GeneralConfig struct {
	Engine      string  `yaml:"engine"`
	RelativeGap float64 `yaml:"relative_gap"`
	MaxNodes    int     `yaml:"max_nodes"` // 0 means unlimited
	MpsFile     string  `yaml:"mps_file"`  // empty disables the export
	OutputFile  string  `yaml:"output_file"`
	Gui         bool    `yaml:"gui"`
	GuiPort     int     `yaml:"gui_port"`
}

var PlannerGeneralConfig GeneralConfig

func Default() GeneralConfig {
	return GeneralConfig{
		Engine:      "branchbound",
		RelativeGap: 0.005,
		MpsFile:     "videos.mps",
		OutputFile:  "videos.out",
		GuiPort:     8080,
	}
}
