package ec2

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/ec2"

	"github.com/alex-sviridov/ec2bot/internal/connector"
)

type Server struct {
	details   connector.Details
	connector *Connector
	dryrun    bool
	// simulated servers only exist in dry-run mode and are never looked up
	simulated bool
}

func newServer(instance *ec2.Instance, conn *Connector) *Server {
	return &Server{
		details:   toDetails(instance),
		connector: conn,
		dryrun:    conn != nil && conn.dryrun,
	}
}

func (s *Server) GetID() string {
	return s.details.ID
}

func (s *Server) GetName() string {
	return s.details.Name
}

func (s *Server) Details() connector.Details {
	return s.details
}

func (s *Server) GetState(ctx context.Context) (connector.State, error) {
	if s.simulated {
		return connector.StateRunning, nil
	}
	instances, err := s.connector.describeInstances(ctx, &ec2.DescribeInstancesInput{
		InstanceIds: []*string{aws.String(s.details.ID)},
	})
	if err != nil {
		return connector.StateUnknown, err
	}
	if len(instances) == 0 {
		return connector.StateUnknown, connector.NotFound(s.details.ID)
	}
	return mapState(stateName(instances[0])), nil
}

func (s *Server) Reboot(ctx context.Context) error {
	log := s.connector.log.With("server_id", s.details.ID, "server_name", s.details.Name)
	if s.dryrun {
		log.Info("[DRY-RUN] Would reboot server")
		return nil
	}

	log.Info("rebooting server")
	_, err := s.connector.api.RebootInstancesWithContext(ctx, &ec2.RebootInstancesInput{
		InstanceIds: []*string{aws.String(s.details.ID)},
	})
	if err != nil {
		return fmt.Errorf("reboot instance: %w", err)
	}
	return nil
}

func (s *Server) Delete(ctx context.Context) error {
	log := s.connector.log.With("server_id", s.details.ID, "server_name", s.details.Name)
	if s.dryrun {
		log.Info("[DRY-RUN] Would terminate server")
		return nil
	}

	log.Info("terminating server")
	_, err := s.connector.api.TerminateInstancesWithContext(ctx, &ec2.TerminateInstancesInput{
		InstanceIds: []*string{aws.String(s.details.ID)},
	})
	if err != nil {
		return fmt.Errorf("terminate instance: %w", err)
	}
	return nil
}

func (s *Server) String() string {
	return fmt.Sprintf("%v [%v]", s.details.Name, s.details.ID)
}

func toDetails(instance *ec2.Instance) connector.Details {
	d := connector.Details{
		ID:           aws.StringValue(instance.InstanceId),
		Name:         instanceName(instance),
		State:        mapState(stateName(instance)),
		KeyPair:      aws.StringValue(instance.KeyName),
		InstanceType: aws.StringValue(instance.InstanceType),
	}

	d.PrivateIPs = appendUnique(d.PrivateIPs, aws.StringValue(instance.PrivateIpAddress))
	d.PublicIPs = appendUnique(d.PublicIPs, aws.StringValue(instance.PublicIpAddress))
	for _, ni := range instance.NetworkInterfaces {
		for _, addr := range ni.PrivateIpAddresses {
			d.PrivateIPs = appendUnique(d.PrivateIPs, aws.StringValue(addr.PrivateIpAddress))
			if addr.Association != nil {
				d.PublicIPs = appendUnique(d.PublicIPs, aws.StringValue(addr.Association.PublicIp))
			}
		}
	}

	for _, group := range instance.SecurityGroups {
		name := aws.StringValue(group.GroupName)
		if name == "" {
			name = aws.StringValue(group.GroupId)
		}
		d.SecurityGroups = appendUnique(d.SecurityGroups, name)
	}
	return d
}

func instanceName(instance *ec2.Instance) string {
	for _, tag := range instance.Tags {
		if aws.StringValue(tag.Key) == "Name" {
			return aws.StringValue(tag.Value)
		}
	}
	return ""
}

func stateName(instance *ec2.Instance) string {
	if instance.State == nil {
		return ""
	}
	return aws.StringValue(instance.State.Name)
}

// mapState converts an EC2 instance state name to a connector state
func mapState(name string) connector.State {
	switch name {
	case ec2.InstanceStateNamePending:
		return connector.StatePending
	case ec2.InstanceStateNameRunning:
		return connector.StateRunning
	case ec2.InstanceStateNameShuttingDown, ec2.InstanceStateNameStopping:
		return connector.StateStopping
	case ec2.InstanceStateNameStopped:
		return connector.StateStopped
	case ec2.InstanceStateNameTerminated:
		return connector.StateTerminated
	default:
		return connector.StateUnknown
	}
}

func appendUnique(list []string, value string) []string {
	if value == "" {
		return list
	}
	for _, v := range list {
		if v == value {
			return list
		}
	}
	return append(list, value)
}

var _ connector.Server = (*Server)(nil)
