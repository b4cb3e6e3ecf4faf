package connector

import "fmt"

// CreateRequest contains parameters for creating a new server
type CreateRequest struct {
	Name         string
	Image        string
	VolumeSizeGB int
	SubnetID     string
	RouteTableID string
	InstanceType string
	KeyPair      string
	Tags         map[string]string
}

// Validate checks that the required fields are present
func (r CreateRequest) Validate() error {
	var missing []string
	if r.Name == "" {
		missing = append(missing, "name")
	}
	if r.Image == "" {
		missing = append(missing, "ami")
	}
	if r.InstanceType == "" {
		missing = append(missing, "instance_type")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %v", missing)
	}
	if r.VolumeSizeGB < 0 {
		return fmt.Errorf("invalid volume size: %d", r.VolumeSizeGB)
	}
	return nil
}
