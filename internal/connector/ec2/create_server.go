package ec2

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/ec2"

	"github.com/alex-sviridov/ec2bot/internal/connector"
)

const (
	rootDeviceName = "/dev/sda"
	dryRunID       = "i-00000000dryrun00"
)

// CreateServer launches a single instance from the requested AMI
func (c *Connector) CreateServer(ctx context.Context, req connector.CreateRequest) (connector.Server, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	log := c.log.With("name", req.Name, "ami", req.Image, "instance_type", req.InstanceType)

	if c.dryrun {
		log.Info("[DRY-RUN] Would create server",
			"subnet_id", req.SubnetID,
			"keypair", req.KeyPair,
			"volume_size", req.VolumeSizeGB)
		return &Server{
			details: connector.Details{
				ID:           dryRunID,
				Name:         req.Name,
				State:        connector.StatePending,
				PrivateIPs:   []string{"10.0.0.1"},
				KeyPair:      req.KeyPair,
				InstanceType: req.InstanceType,
			},
			connector: c,
			dryrun:    true,
			simulated: true,
		}, nil
	}

	if err := c.checkInstanceType(ctx, req.InstanceType); err != nil {
		return nil, err
	}

	if req.RouteTableID != "" {
		// RunInstances has no route table parameter; the subnet's association applies.
		log.Debug("route table requested", "route_table_id", req.RouteTableID)
	}

	log.Info("creating server", "subnet_id", req.SubnetID, "keypair", req.KeyPair)
	reservation, err := c.api.RunInstancesWithContext(ctx, buildRunInstancesInput(req))
	if err != nil {
		return nil, fmt.Errorf("run instances: %w", err)
	}
	if len(reservation.Instances) == 0 {
		return nil, fmt.Errorf("run instances: no instance returned")
	}

	server := newServer(reservation.Instances[0], c)
	if server.details.Name == "" {
		server.details.Name = req.Name
	}
	log.Info("server created successfully", "server_id", server.GetID())
	return server, nil
}

// checkInstanceType verifies the instance type is offered in the region
func (c *Connector) checkInstanceType(ctx context.Context, instanceType string) error {
	output, err := c.api.DescribeInstanceTypesWithContext(ctx, &ec2.DescribeInstanceTypesInput{
		InstanceTypes: []*string{aws.String(instanceType)},
	})
	if err != nil {
		return fmt.Errorf("describe instance type %s: %w", instanceType, err)
	}
	if len(output.InstanceTypes) == 0 {
		return fmt.Errorf("unknown instance type: %s", instanceType)
	}
	return nil
}

func buildRunInstancesInput(req connector.CreateRequest) *ec2.RunInstancesInput {
	input := &ec2.RunInstancesInput{
		ImageId:      aws.String(req.Image),
		InstanceType: aws.String(req.InstanceType),
		MinCount:     aws.Int64(1),
		MaxCount:     aws.Int64(1),
		BlockDeviceMappings: []*ec2.BlockDeviceMapping{
			{
				DeviceName: aws.String(rootDeviceName),
				Ebs: &ec2.EbsBlockDevice{
					VolumeType:          aws.String(ec2.VolumeTypeStandard),
					DeleteOnTermination: aws.Bool(true),
				},
			},
		},
	}
	if req.VolumeSizeGB > 0 {
		input.BlockDeviceMappings[0].Ebs.VolumeSize = aws.Int64(int64(req.VolumeSizeGB))
	}
	if req.KeyPair != "" {
		input.KeyName = aws.String(req.KeyPair)
	}
	if req.SubnetID != "" {
		input.SubnetId = aws.String(req.SubnetID)
	}

	tags := buildTags(req.Tags)
	if len(tags) > 0 {
		input.TagSpecifications = []*ec2.TagSpecification{
			{
				ResourceType: aws.String(ec2.ResourceTypeInstance),
				Tags:         tags,
			},
		}
	}
	return input
}

func buildTags(tags map[string]string) []*ec2.Tag {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := make([]*ec2.Tag, 0, len(keys))
	for _, k := range keys {
		result = append(result, &ec2.Tag{
			Key:   aws.String(k),
			Value: aws.String(tags[k]),
		})
	}
	return result
}
