// Package aws implements the instance inventory over the EC2 API.
package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/rs/zerolog/log"

	"github.com/yairfalse/devstop/internal/filter"
	"github.com/yairfalse/devstop/pkg/instance"
)

// Inventory lists and stops EC2 instances in one region.
type Inventory struct {
	region string
	client EC2API
}

// Config holds EC2 inventory configuration.
type Config struct {
	Region  string
	Profile string
}

// New creates an inventory using the default AWS credential chain.
func New(ctx context.Context, cfg Config) (*Inventory, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.Profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(cfg.Profile))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return NewWithClient(cfg.Region, ec2.NewFromConfig(awsCfg)), nil
}

// NewWithClient creates an inventory over an existing client.
func NewWithClient(region string, client EC2API) *Inventory {
	return &Inventory{region: region, client: client}
}

// ListInstances returns instances matching f, in the order EC2 returns them.
func (inv *Inventory) ListInstances(ctx context.Context, f filter.Filter) ([]instance.Instance, error) {
	var instances []instance.Instance
	var nextToken *string

	for {
		output, err := inv.client.DescribeInstances(ctx, &ec2.DescribeInstancesInput{
			Filters:   ec2Filters(f),
			NextToken: nextToken,
		})
		if err != nil {
			return nil, fmt.Errorf("describe instances: %w", err)
		}

		for _, reservation := range output.Reservations {
			for _, i := range reservation.Instances {
				instances = append(instances, convertInstance(i))
			}
		}

		if output.NextToken == nil || aws.ToString(output.NextToken) == "" {
			break
		}
		nextToken = output.NextToken
	}

	// EC2 tag filters are exact, but re-check so the predicate holds
	// for any client behind EC2API.
	matched := f.Apply(instances)
	if dropped := len(instances) - len(matched); dropped > 0 {
		log.Debug().Int("dropped", dropped).Str("region", inv.region).Msg("instances failed client-side filter")
	}
	return matched, nil
}

// StopInstance requests a stop for a single instance without waiting.
func (inv *Inventory) StopInstance(ctx context.Context, id string) error {
	output, err := inv.client.StopInstances(ctx, &ec2.StopInstancesInput{
		InstanceIds: []string{id},
	})
	if err != nil {
		return fmt.Errorf("stop instance %s: %w", id, err)
	}

	for _, change := range output.StoppingInstances {
		if aws.ToString(change.InstanceId) != id || change.CurrentState == nil {
			continue
		}
		log.Debug().
			Str("instance_id", id).
			Str("previous_state", previousState(change)).
			Str("current_state", string(change.CurrentState.Name)).
			Msg("stop acknowledged")
	}
	return nil
}

func ec2Filters(f filter.Filter) []ec2types.Filter {
	var filters []ec2types.Filter

	if states := f.States(); len(states) > 0 {
		values := make([]string, 0, len(states))
		for _, s := range states {
			values = append(values, string(s))
		}
		filters = append(filters, ec2types.Filter{
			Name:   aws.String("instance-state-name"),
			Values: values,
		})
	}

	for _, key := range f.TagKeys() {
		filters = append(filters, ec2types.Filter{
			Name:   aws.String("tag:" + key),
			Values: []string{f.TagValue(key)},
		})
	}

	return filters
}

func convertInstance(i ec2types.Instance) instance.Instance {
	out := instance.Instance{
		ID:   aws.ToString(i.InstanceId),
		Tags: make(map[string]string, len(i.Tags)),
	}
	if i.State != nil {
		out.State = instance.State(i.State.Name)
	}
	for _, tag := range i.Tags {
		out.Tags[aws.ToString(tag.Key)] = aws.ToString(tag.Value)
	}
	return out
}

func previousState(change ec2types.InstanceStateChange) string {
	if change.PreviousState == nil {
		return ""
	}
	return string(change.PreviousState.Name)
}
