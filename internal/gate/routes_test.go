package gate

import "testing"

func TestClassify(t *testing.T) {
	table := DefaultRouteTable()

	tests := []struct {
		path string
		want RouteClass
	}{
		{"/landing", ClassPublic},
		{"/auth/login", ClassPublic},
		{"/auth/register", ClassPublic},
		{"/auth/register/email", ClassPublic},
		{"/auth/register/email/otp", ClassOTP},
		{"/terms-of-service", ClassLegal},
		{"/privacy-policy", ClassLegal},
		{"/onboarding", ClassOnboarding},
		{"/onboarding/success", ClassOnboarding},
		{"/onboardingx", ClassProtected},
		{"/", ClassProtected},
		{"/hospitals", ClassProtected},
		{"/appointments/42", ClassProtected},
		{"/landing/extra", ClassProtected},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := table.Classify(tt.path); got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

// Extending the table must change classification without touching the
// decision algorithm.
func TestClassifyExtended(t *testing.T) {
	table := DefaultRouteTable()
	table.Public = append(table.Public, "/about")

	if got := table.Classify("/about"); got != ClassPublic {
		t.Errorf("Classify(/about) = %v, want public", got)
	}
}
