package provider

import (
	"github.com/NeuroPSI-Neuroinformatics/cloud-deploy/config"
	"github.com/NeuroPSI-Neuroinformatics/cloud-deploy/log"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ec2"
	"github.com/pkg/errors"
)

// AWS lists EC2 instances in one region. Credentials come from the SDK's
// usual chain (environment, shared credentials file, instance profile).
type AWS struct {
	ec2    *ec2.EC2
	region string

	memoryByType map[string]int
}

func NewAWS(cfg config.AWSConfig) (*AWS, error) {
	sess, err := session.NewSession(&aws.Config{Region: aws.String(cfg.Region)})
	if err != nil {
		return nil, errors.Wrap(err, "cannot create AWS session")
	}
	return &AWS{
		ec2:          ec2.New(sess),
		region:       cfg.Region,
		memoryByType: make(map[string]int),
	}, nil
}

func (p *AWS) Name() string {
	return "AWS"
}

func (p *AWS) List() ([]Instance, error) {
	output, err := p.ec2.DescribeInstances(&ec2.DescribeInstancesInput{})
	if err != nil {
		return nil, errors.Wrap(err, "cannot list EC2 instances")
	}

	var instances []Instance
	for _, reservation := range output.Reservations {
		for _, inst := range reservation.Instances {
			if aws.StringValue(inst.State.Name) == ec2.InstanceStateNameTerminated {
				continue
			}
			instances = append(instances, &ec2Instance{provider: p, i: inst})
		}
	}
	return instances, nil
}

func (p *AWS) memoryMB(instanceType string) int {
	if mb, ok := p.memoryByType[instanceType]; ok {
		return mb
	}
	output, err := p.ec2.DescribeInstanceTypes(&ec2.DescribeInstanceTypesInput{
		InstanceTypes: []*string{aws.String(instanceType)},
	})
	if err != nil || len(output.InstanceTypes) == 0 {
		log.Warningf("cannot look up instance type %s: %v", instanceType, err)
		return 0
	}
	mb := int(aws.Int64Value(output.InstanceTypes[0].MemoryInfo.SizeInMiB))
	p.memoryByType[instanceType] = mb
	return mb
}

type ec2Instance struct {
	provider *AWS
	i        *ec2.Instance
}

func (n *ec2Instance) Name() string {
	for _, tag := range n.i.Tags {
		if aws.StringValue(tag.Key) == "Name" {
			return aws.StringValue(tag.Value)
		}
	}
	return aws.StringValue(n.i.InstanceId)
}

func (n *ec2Instance) IPAddress() string {
	return aws.StringValue(n.i.PublicIpAddress)
}

func (n *ec2Instance) Status() string {
	return aws.StringValue(n.i.State.Name)
}

func (n *ec2Instance) MemoryMB() int {
	return n.provider.memoryMB(aws.StringValue(n.i.InstanceType))
}

func (n *ec2Instance) Location() string {
	return n.provider.region
}

func (n *ec2Instance) Type() string {
	return aws.StringValue(n.i.InstanceType)
}

func (n *ec2Instance) CreatedAt() string {
	if n.i.LaunchTime == nil {
		return ""
	}
	return n.i.LaunchTime.Format("2006-01-02T15:04:05Z07:00")
}

func (n *ec2Instance) Provider() string {
	return "AWS"
}

func (n *ec2Instance) RemoteUsername() string {
	return "ubuntu"
}

func (n *ec2Instance) UseSudo() bool {
	return true
}

func (n *ec2Instance) Shutdown() error {
	_, err := n.provider.ec2.StopInstances(&ec2.StopInstancesInput{
		InstanceIds: []*string{n.i.InstanceId},
	})
	return errors.Wrapf(err, "cannot stop instance %s", n.Name())
}

func (n *ec2Instance) Destroy() error {
	_, err := n.provider.ec2.TerminateInstances(&ec2.TerminateInstancesInput{
		InstanceIds: []*string{n.i.InstanceId},
	})
	return errors.Wrapf(err, "cannot terminate instance %s", n.Name())
}
