// Package servicespec loads the declarative service description.
package servicespec

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v2"
	"k8s.io/apimachinery/pkg/api/resource"
	"k8s.io/apimachinery/pkg/util/validation"
	"k8s.io/utils/ptr"

	"github.com/kubeship/kubeship/pkg/troubleshoot"
)

// Spec is the on-disk service description.
type Spec struct {
	Name      string            `yaml:"name"`
	App       string            `yaml:"app,omitempty"`
	Namespace string            `yaml:"namespace,omitempty"`
	Image     string            `yaml:"image,omitempty"`
	Port      int               `yaml:"port,omitempty"`
	Replicas  *int32            `yaml:"replicas,omitempty"`
	Labels    map[string]string `yaml:"labels,omitempty"`
	Resources Resources         `yaml:"resources,omitempty"`
}

type Resources struct {
	Limits   ResourceList `yaml:"limits,omitempty"`
	Requests ResourceList `yaml:"requests,omitempty"`
}

type ResourceList struct {
	CPU    string `yaml:"cpu,omitempty"`
	Memory string `yaml:"memory,omitempty"`
}

// Load reads and validates the service description at path.
func Load(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read service description: %w", err)
	}
	spec, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid service description %s: %w", path, err)
	}
	return spec, nil
}

// Parse decodes and validates a service description. Unknown keys are rejected.
func Parse(data []byte) (*Spec, error) {
	spec := &Spec{}
	if err := yaml.UnmarshalStrict(data, spec); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return spec, nil
}

// Validate checks the fields the rest of kubeship relies on.
func (s *Spec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("name must be set")
	}
	if errs := validation.IsDNS1123Label(s.Name); len(errs) > 0 {
		return fmt.Errorf("name %q is invalid: %s", s.Name, strings.Join(errs, "; "))
	}
	if s.Namespace != "" {
		if errs := validation.IsDNS1123Label(s.Namespace); len(errs) > 0 {
			return fmt.Errorf("namespace %q is invalid: %s", s.Namespace, strings.Join(errs, "; "))
		}
	}
	if s.Port < 0 || s.Port > 65535 {
		return fmt.Errorf("port %d is out of range", s.Port)
	}
	if s.Replicas != nil && *s.Replicas < 0 {
		return fmt.Errorf("replicas must not be negative")
	}
	for key, value := range s.Labels {
		if errs := validation.IsQualifiedName(key); len(errs) > 0 {
			return fmt.Errorf("label key %q is invalid: %s", key, strings.Join(errs, "; "))
		}
		if errs := validation.IsValidLabelValue(value); len(errs) > 0 {
			return fmt.Errorf("label %q value %q is invalid: %s", key, value, strings.Join(errs, "; "))
		}
	}
	for field, quantity := range map[string]string{
		"resources.limits.cpu":      s.Resources.Limits.CPU,
		"resources.limits.memory":   s.Resources.Limits.Memory,
		"resources.requests.cpu":    s.Resources.Requests.CPU,
		"resources.requests.memory": s.Resources.Requests.Memory,
	} {
		if quantity == "" {
			continue
		}
		if _, err := resource.ParseQuantity(quantity); err != nil {
			return fmt.Errorf("%s %q is invalid: %w", field, quantity, err)
		}
	}
	return nil
}

// ServiceInfo returns the identity used to troubleshoot the service.
func (s *Spec) ServiceInfo() troubleshoot.ServiceInfo {
	return troubleshoot.ServiceInfo{
		ServiceName: s.Name,
		AppName:     s.App,
		Namespace:   s.Namespace,
		Image:       s.Image,
		Port:        s.Port,
		Labels:      s.Labels,
		Replicas:    ptr.Deref(s.Replicas, 0),
	}
}
