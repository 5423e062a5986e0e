package entity

// Provider identifies the federated identity provider an identity originated
// from, or was linked to.
type Provider int16

const (
	// ProviderUnknown means the identity has no federated origin.
	ProviderUnknown Provider = 0

	// ProviderGoogle marks identities reconciled from Google ID tokens.
	ProviderGoogle Provider = 1

	// ProviderAuth0 marks identities reconciled from Auth0 access tokens.
	ProviderAuth0 Provider = 2
)

func (p Provider) String() string {
	switch p {
	case ProviderGoogle:
		return "google"
	case ProviderAuth0:
		return "auth0"
	default:
		return "unknown"
	}
}

func (p Provider) IsUnknown() bool {
	switch p {
	case ProviderGoogle, ProviderAuth0:
		return false
	default:
		return true
	}
}

// ProviderFromString parses the wire name of a provider.
func ProviderFromString(str string) Provider {
	switch str {
	case "google":
		return ProviderGoogle
	case "auth0":
		return ProviderAuth0
	default:
		return ProviderUnknown
	}
}
