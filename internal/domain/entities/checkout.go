package entities

// CheckoutSpec describes the upstream working copy the resolver needs.
type CheckoutSpec struct {
	// Path is a persistent checkout to refresh in place. When empty a
	// temporary shallow clone of URL is made.
	Path   string
	URL    string
	Remote string
	Branch string
	Depth  int
	Tool   ToolOptions
}

// TrackingRef returns the remote-tracking ref of the upstream branch.
func (s CheckoutSpec) TrackingRef() string {
	return "refs/remotes/" + s.Remote + "/" + s.Branch
}

// CheckoutSpecFor derives the checkout of the configured upstream.
func CheckoutSpecFor(settings *Settings, depth int) CheckoutSpec {
	return CheckoutSpec{
		Path:   settings.UpstreamCheckoutPath,
		URL:    settings.UpstreamURL,
		Remote: settings.UpstreamRemote,
		Branch: settings.UpstreamBranch,
		Depth:  depth,
		Tool:   settings.Tool(),
	}
}
