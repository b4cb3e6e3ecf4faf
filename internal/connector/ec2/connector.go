package ec2

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ec2"

	"github.com/alex-sviridov/ec2bot/internal/connector"
)

// EC2API is the subset of the EC2 client used by the connector.
// *ec2.EC2 satisfies it; tests substitute a fake.
type EC2API interface {
	DescribeInstancesWithContext(ctx aws.Context, input *ec2.DescribeInstancesInput, opts ...request.Option) (*ec2.DescribeInstancesOutput, error)
	DescribeInstanceTypesWithContext(ctx aws.Context, input *ec2.DescribeInstanceTypesInput, opts ...request.Option) (*ec2.DescribeInstanceTypesOutput, error)
	RunInstancesWithContext(ctx aws.Context, input *ec2.RunInstancesInput, opts ...request.Option) (*ec2.Reservation, error)
	RebootInstancesWithContext(ctx aws.Context, input *ec2.RebootInstancesInput, opts ...request.Option) (*ec2.RebootInstancesOutput, error)
	TerminateInstancesWithContext(ctx aws.Context, input *ec2.TerminateInstancesInput, opts ...request.Option) (*ec2.TerminateInstancesOutput, error)
}

// Options configures the EC2 connector
type Options struct {
	AccessID   string
	SecretKey  string
	Region     string
	MaxRetries int
}

type Connector struct {
	api    EC2API
	region string
	dryrun bool
	log    *slog.Logger
}

// NewConnector creates an EC2 connector. Static credentials are used when both
// AccessID and SecretKey are set, otherwise the SDK default chain applies.
func NewConnector(log *slog.Logger, opts Options, dryrun bool) (*Connector, error) {
	if opts.Region == "" {
		return nil, fmt.Errorf("missing required setting: region")
	}

	cfg := &aws.Config{
		Region: aws.String(opts.Region),
	}
	if opts.MaxRetries > 0 {
		cfg.MaxRetries = aws.Int(opts.MaxRetries)
	}
	if opts.AccessID != "" && opts.SecretKey != "" {
		cfg.Credentials = credentials.NewStaticCredentials(opts.AccessID, opts.SecretKey, "")
	}

	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, fmt.Errorf("create aws session: %w", err)
	}

	return NewConnectorWithAPI(log, ec2.New(sess), opts.Region, dryrun), nil
}

// NewConnectorWithAPI creates a connector around an existing EC2 client
func NewConnectorWithAPI(log *slog.Logger, api EC2API, region string, dryrun bool) *Connector {
	return &Connector{
		api:    api,
		region: region,
		dryrun: dryrun,
		log:    log,
	}
}

// describeInstances pages through DescribeInstances and flattens reservations
func (c *Connector) describeInstances(ctx context.Context, input *ec2.DescribeInstancesInput) ([]*ec2.Instance, error) {
	var results []*ec2.Instance
	for {
		output, err := c.api.DescribeInstancesWithContext(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("describe instances: %w", err)
		}

		for _, reservation := range output.Reservations {
			results = append(results, reservation.Instances...)
		}

		if aws.StringValue(output.NextToken) == "" {
			break
		}
		input.NextToken = output.NextToken
	}
	return results, nil
}

func (c *Connector) ListServers(ctx context.Context) (servers []connector.Server, err error) {
	instances, err := c.describeInstances(ctx, &ec2.DescribeInstancesInput{})
	if err != nil {
		return nil, err
	}
	for _, instance := range instances {
		servers = append(servers, newServer(instance, c))
	}
	return servers, nil
}

func (c *Connector) GetServerByID(ctx context.Context, id string) (connector.Server, error) {
	instances, err := c.describeInstances(ctx, &ec2.DescribeInstancesInput{
		InstanceIds: []*string{aws.String(id)},
	})
	if err != nil {
		return nil, err
	}
	if len(instances) == 0 {
		return nil, connector.NotFound(id)
	}
	return newServer(instances[0], c), nil
}

// GetServerByName returns the instance whose Name tag matches. Live instances
// win over terminated ones that still carry the same name.
func (c *Connector) GetServerByName(ctx context.Context, name string) (connector.Server, error) {
	instances, err := c.describeInstances(ctx, &ec2.DescribeInstancesInput{
		Filters: []*ec2.Filter{newEc2Filter("tag:Name", name)},
	})
	if err != nil {
		return nil, err
	}

	var match *ec2.Instance
	for _, instance := range instances {
		if instanceName(instance) != name {
			continue
		}
		if match == nil {
			match = instance
		}
		if stateName(instance) != ec2.InstanceStateNameTerminated {
			match = instance
			break
		}
	}
	if match == nil {
		return nil, connector.NotFound(name)
	}
	return newServer(match, c), nil
}

func newEc2Filter(name string, value string) *ec2.Filter {
	return &ec2.Filter{
		Name:   aws.String(name),
		Values: []*string{aws.String(value)},
	}
}

var _ connector.Connector = (*Connector)(nil)
