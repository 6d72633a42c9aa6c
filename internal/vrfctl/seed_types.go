package vrfctl

type SeedConfig struct {
	APIURL string   `yaml:"api_url"`
	VRFs   []VRFDef `yaml:"vrfs"`
}

type VRFDef struct {
	Name      string   `yaml:"name"`
	Namespace string   `yaml:"namespace"`
	RD        string   `yaml:"rd"`
	Imports   []string `yaml:"imports"`
	Exports   []string `yaml:"exports"`
	Prefixes  []string `yaml:"prefixes"`
}
