package scenarios

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Production is one expected entry of the response, in merit order.
type Production struct {
	Name string `yaml:"name"`
	P    string `yaml:"p"`
}

// Expected describes the response a scenario must produce.
type Expected struct {
	Status int `yaml:"status"`
	// UnsatisfiedLoad is compared with the unsatisfied-load header when set.
	UnsatisfiedLoad string       `yaml:"unsatisfied_load,omitempty"`
	Productions     []Production `yaml:"productions,omitempty"`
}

// Scenario is a production plan request replayed through the HTTP service.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	// Payload is the raw JSON request body.
	Payload    string   `yaml:"payload"`
	Permissive bool     `yaml:"permissive,omitempty"`
	Expected   Expected `yaml:"expected"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if sc.Name == "" || sc.Payload == "" {
		return nil, fmt.Errorf("%s: name and payload are required", path)
	}
	if sc.Expected.Status == 0 {
		sc.Expected.Status = 200
	}
	return &sc, nil
}
