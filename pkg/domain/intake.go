package domain

// Dept identifies the department a submission is addressed to.
type Dept string

const (
	DeptAdmissions Dept = "ADMISSIONS"
	DeptRegistry   Dept = "REGISTRY"
)

// IsValid reports whether the department is one of the two known values.
func (d Dept) IsValid() bool {
	return d == DeptAdmissions || d == DeptRegistry
}

// ReferencePrefix returns the department's reference-number prefix.
func (d Dept) ReferencePrefix() string {
	if d == DeptRegistry {
		return "REG"
	}
	return "ADM"
}

// FundingType identifies how a student's programme is financed.
type FundingType string

const (
	FundingGATE FundingType = "GATE"
	FundingSelf FundingType = "SELF"
)

// IsValid reports whether the funding type is one of the two known values.
func (f FundingType) IsValid() bool {
	return f == FundingGATE || f == FundingSelf
}
