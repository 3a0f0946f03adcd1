package config

// YAMLConfig mirrors eyeball.yml on disk.
type YAMLConfig struct {
	Package  string `yaml:"package"`
	TestDir  string `yaml:"test_dir"`
	Fixtures string `yaml:"fixtures"`
}
