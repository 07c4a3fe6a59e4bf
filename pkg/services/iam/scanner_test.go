package iam

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/cloud-audit/pkg/models/domain"
	"github.com/de-tools/cloud-audit/pkg/services/audit"
)

// MockAPI is a mock implementation of API for testing
type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) ListBucketPolicies(ctx context.Context, projectID string) ([]domain.BucketPolicy, error) {
	args := m.Called(ctx, projectID)
	return args.Get(0).([]domain.BucketPolicy), args.Error(1)
}

func scannerConfig() domain.IAMConfig {
	return domain.IAMConfig{
		RolesToFlag:   []string{"roles/storage.admin"},
		MembersToFlag: []string{"allUsers"},
	}
}

func TestFindViolations(t *testing.T) {
	t.Run("flags only configured members of a configured role", func(t *testing.T) {
		bindings := []domain.Binding{
			{Role: "roles/storage.admin", Members: []string{"allUsers", "user:x@example.com"}},
		}

		findings := FindViolations("bkt1", bindings, scannerConfig())

		require.Len(t, findings, 1)
		assert.Equal(t, "bkt1", findings[0].ResourceName)
		assert.Equal(t, "roles/storage.admin", findings[0].Role)
		assert.Equal(t, "allUsers", findings[0].Member)
	})

	t.Run("collects every offending pair, not just the first", func(t *testing.T) {
		cfg := domain.IAMConfig{
			RolesToFlag:   []string{"roles/storage.admin", "roles/storage.objectAdmin"},
			MembersToFlag: []string{"allUsers", "allAuthenticatedUsers"},
		}
		bindings := []domain.Binding{
			{Role: "roles/storage.admin", Members: []string{"allUsers", "allAuthenticatedUsers"}},
			{Role: "roles/storage.objectAdmin", Members: []string{"allUsers"}},
			{Role: "roles/storage.objectViewer", Members: []string{"allUsers"}},
		}

		findings := FindViolations("bkt1", bindings, cfg)

		assert.Len(t, findings, 3)
	})

	t.Run("binding without members produces nothing", func(t *testing.T) {
		bindings := []domain.Binding{{Role: "roles/storage.admin"}}
		assert.Empty(t, FindViolations("bkt1", bindings, scannerConfig()))
	})

	t.Run("binding without a role produces nothing", func(t *testing.T) {
		bindings := []domain.Binding{{Members: []string{"allUsers"}}}
		assert.Empty(t, FindViolations("bkt1", bindings, scannerConfig()))
	})

	t.Run("role match is exact", func(t *testing.T) {
		bindings := []domain.Binding{
			{Role: "roles/storage.admin2", Members: []string{"allUsers"}},
		}
		assert.Empty(t, FindViolations("bkt1", bindings, scannerConfig()))
	})

	t.Run("condition is surfaced on the finding", func(t *testing.T) {
		cond := &domain.BindingCondition{Title: "expires", Expression: "request.time < timestamp('2027-01-01T00:00:00Z')"}
		bindings := []domain.Binding{
			{Role: "roles/storage.admin", Members: []string{"allUsers"}, Condition: cond},
		}

		findings := FindViolations("bkt1", bindings, scannerConfig())

		require.Len(t, findings, 1)
		assert.Equal(t, cond, findings[0].Condition)
	})
}

func TestRemediation(t *testing.T) {
	finding := domain.BindingFinding{ResourceName: "bkt1", Role: "roles/storage.admin", Member: "allUsers"}
	text := Remediation(finding)
	assert.Contains(t, text, "bkt1")
	assert.Contains(t, text, "roles/storage.admin")
	assert.Contains(t, text, "allUsers")
	assert.Contains(t, text, "least privilege")

	finding.Condition = &domain.BindingCondition{Title: "expires"}
	assert.Contains(t, Remediation(finding), "expires")
}

func TestScannerRun(t *testing.T) {
	ctx := context.Background()
	req := audit.Request{
		ProjectID: "test-project",
		Config:    domain.Config{IAM: scannerConfig()},
	}

	t.Run("listing failure degrades gracefully", func(t *testing.T) {
		api := new(MockAPI)
		api.On("ListBucketPolicies", ctx, "test-project").
			Return([]domain.BucketPolicy{}, errors.New("permission denied"))

		err := NewScanner(api).Run(ctx, req)

		assert.NoError(t, err)
	})

	t.Run("ignored buckets and policy errors are skipped", func(t *testing.T) {
		cfg := scannerConfig()
		cfg.IgnoreBuckets = []string{"ignored-bucket"}
		reqWithIgnores := req
		reqWithIgnores.Config.IAM = cfg

		api := new(MockAPI)
		api.On("ListBucketPolicies", ctx, "test-project").Return([]domain.BucketPolicy{
			{BucketName: "ignored-bucket", Bindings: []domain.Binding{
				{Role: "roles/storage.admin", Members: []string{"allUsers"}},
			}},
			{BucketName: "broken-bucket", Err: errors.New("forbidden")},
			{BucketName: "open-bucket", Bindings: []domain.Binding{
				{Role: "roles/storage.admin", Members: []string{"allUsers"}},
			}},
		}, nil)

		err := NewScanner(api).Run(ctx, reqWithIgnores)

		assert.NoError(t, err)
		api.AssertExpectations(t)
	})
}

func TestScannerDescriptor(t *testing.T) {
	desc := NewScanner(new(MockAPI)).Descriptor()
	assert.Equal(t, "iam_scanner", desc.ConfigKey)
	assert.NotEmpty(t, desc.DisplayName)
}
