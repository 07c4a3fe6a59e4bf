package gcp

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"google.golang.org/api/option"
	storage "google.golang.org/api/storage/v1"

	"github.com/de-tools/cloud-audit/pkg/models/domain"
)

// BucketService lists a project's storage buckets together with their IAM
// policies. A policy that cannot be fetched is reported per bucket, it does
// not fail the whole listing.
type BucketService struct {
	svc *storage.Service
}

func NewBucketService(ctx context.Context, opts ...option.ClientOption) (*BucketService, error) {
	svc, err := storage.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage service: %w", err)
	}
	return &BucketService{svc: svc}, nil
}

// ListBucketPolicies returns every bucket in the project paired with its IAM
// bindings, or with the error that prevented retrieving them.
func (s *BucketService) ListBucketPolicies(ctx context.Context, projectID string) ([]domain.BucketPolicy, error) {
	log := zerolog.Ctx(ctx)

	var policies []domain.BucketPolicy
	err := s.svc.Buckets.List(projectID).Pages(ctx, func(page *storage.Buckets) error {
		for _, bucket := range page.Items {
			policies = append(policies, s.bucketPolicy(ctx, bucket.Name))
		}
		return nil
	})
	if err != nil {
		return nil, wrapAPIError(err, fmt.Sprintf("listing buckets in project %q", projectID))
	}
	log.Info().Int("buckets", len(policies)).Str("project", projectID).Msg("listed buckets with policies")
	return policies, nil
}

func (s *BucketService) bucketPolicy(ctx context.Context, name string) domain.BucketPolicy {
	policy, err := s.svc.Buckets.GetIamPolicy(name).OptionsRequestedPolicyVersion(3).Context(ctx).Do()
	if err != nil {
		return domain.BucketPolicy{
			BucketName: name,
			Err:        wrapAPIError(err, fmt.Sprintf("retrieving IAM policy for bucket %q", name)),
		}
	}

	bp := domain.BucketPolicy{BucketName: name}
	for _, binding := range policy.Bindings {
		b := domain.Binding{Role: binding.Role, Members: binding.Members}
		if binding.Condition != nil {
			b.Condition = &domain.BindingCondition{
				Title:       binding.Condition.Title,
				Description: binding.Condition.Description,
				Expression:  binding.Condition.Expression,
			}
		}
		bp.Bindings = append(bp.Bindings, b)
	}
	return bp
}
