package ec2

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/ec2"
)

// fakeEC2 is an in-memory EC2API used by the connector tests
type fakeEC2 struct {
	pages         []*ec2.DescribeInstancesOutput
	describeErr   error
	describeCalls []*ec2.DescribeInstancesInput

	instanceTypes []string
	typesErr      error

	runInput  *ec2.RunInstancesInput
	runResult *ec2.Reservation
	runErr    error

	rebooted   []string
	rebootErr  error
	terminated []string
	termErr    error
}

func (f *fakeEC2) DescribeInstancesWithContext(ctx aws.Context, input *ec2.DescribeInstancesInput, opts ...request.Option) (*ec2.DescribeInstancesOutput, error) {
	copied := *input
	f.describeCalls = append(f.describeCalls, &copied)
	if f.describeErr != nil {
		return nil, f.describeErr
	}
	if len(f.pages) == 0 {
		return &ec2.DescribeInstancesOutput{}, nil
	}

	page := 0
	if token := aws.StringValue(input.NextToken); token != "" {
		for i := range f.pages {
			if aws.StringValue(f.pages[i].NextToken) == token {
				page = i + 1
			}
		}
	}
	return f.pages[page], nil
}

func (f *fakeEC2) DescribeInstanceTypesWithContext(ctx aws.Context, input *ec2.DescribeInstanceTypesInput, opts ...request.Option) (*ec2.DescribeInstanceTypesOutput, error) {
	if f.typesErr != nil {
		return nil, f.typesErr
	}
	out := &ec2.DescribeInstanceTypesOutput{}
	for _, requested := range input.InstanceTypes {
		for _, known := range f.instanceTypes {
			if aws.StringValue(requested) == known {
				out.InstanceTypes = append(out.InstanceTypes, &ec2.InstanceTypeInfo{
					InstanceType: aws.String(known),
				})
			}
		}
	}
	return out, nil
}

func (f *fakeEC2) RunInstancesWithContext(ctx aws.Context, input *ec2.RunInstancesInput, opts ...request.Option) (*ec2.Reservation, error) {
	f.runInput = input
	if f.runErr != nil {
		return nil, f.runErr
	}
	return f.runResult, nil
}

func (f *fakeEC2) RebootInstancesWithContext(ctx aws.Context, input *ec2.RebootInstancesInput, opts ...request.Option) (*ec2.RebootInstancesOutput, error) {
	if f.rebootErr != nil {
		return nil, f.rebootErr
	}
	f.rebooted = append(f.rebooted, aws.StringValueSlice(input.InstanceIds)...)
	return &ec2.RebootInstancesOutput{}, nil
}

func (f *fakeEC2) TerminateInstancesWithContext(ctx aws.Context, input *ec2.TerminateInstancesInput, opts ...request.Option) (*ec2.TerminateInstancesOutput, error) {
	if f.termErr != nil {
		return nil, f.termErr
	}
	f.terminated = append(f.terminated, aws.StringValueSlice(input.InstanceIds)...)
	return &ec2.TerminateInstancesOutput{}, nil
}

func testInstance(id, name, state string) *ec2.Instance {
	return &ec2.Instance{
		InstanceId:       aws.String(id),
		InstanceType:     aws.String("t2.medium"),
		KeyName:          aws.String("ops-key"),
		PrivateIpAddress: aws.String("10.0.1.5"),
		PublicIpAddress:  aws.String("54.1.2.3"),
		State:            &ec2.InstanceState{Name: aws.String(state)},
		SecurityGroups: []*ec2.GroupIdentifier{
			{GroupId: aws.String("sg-1"), GroupName: aws.String("default")},
			{GroupId: aws.String("sg-2")},
		},
		Tags: []*ec2.Tag{
			{Key: aws.String("team"), Value: aws.String("systems")},
			{Key: aws.String("Name"), Value: aws.String(name)},
		},
	}
}

func reservationPage(token string, instances ...*ec2.Instance) *ec2.DescribeInstancesOutput {
	out := &ec2.DescribeInstancesOutput{
		Reservations: []*ec2.Reservation{{Instances: instances}},
	}
	if token != "" {
		out.NextToken = aws.String(token)
	}
	return out
}
