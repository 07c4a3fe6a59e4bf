package domain

// Binding is one access-policy entry on a bucket: a role granted to a set of
// principals, optionally restricted by a condition. The condition is opaque
// to the scanner and only surfaced in messages.
type Binding struct {
	Role      string
	Members   []string
	Condition *BindingCondition
}

// BindingCondition mirrors the provider's IAM condition shape.
type BindingCondition struct {
	Title       string
	Description string
	Expression  string
}

// BindingFinding is one offending (role, member) pair on a resource.
// A single resource may produce any number of findings.
type BindingFinding struct {
	ResourceName string
	Role         string
	Member       string
	Condition    *BindingCondition
}

// BucketPolicy pairs a bucket with its IAM bindings, or with the error that
// prevented retrieving them. Err being set means Bindings is meaningless.
type BucketPolicy struct {
	BucketName string
	Bindings   []Binding
	Err        error
}
