package entities

// TransactionOptions configures one branch transaction against the
// downstream repository.
type TransactionOptions struct {
	// BranchName is the working branch. When empty, DefaultBranchName is used
	// and the branch is deleted again on restore.
	BranchName        string
	DefaultBranchName string
	MainBranch        string
	Remote            string
	Message           string
	SkipUpload        bool
	Bots              []string
}

// BaseRef returns the remote-tracking ref new working branches start from.
func (o TransactionOptions) BaseRef() string {
	return o.Remote + "/" + o.MainBranch
}

// TransactionState is the bookkeeping of an open branch transaction. It is
// owned by a single transaction and never shared.
type TransactionState struct {
	BranchName     string
	OriginalRef    string
	Stashed        bool
	StagedPaths    []string
	BranchCreated  bool
	ReviewIssue    string
	ReviewUploaded bool
}

// UsesDefaultBranch reports whether the working branch is the reusable
// default branch that gets deleted on restore.
func (s *TransactionState) UsesDefaultBranch(opts TransactionOptions) bool {
	return s.BranchName == opts.DefaultBranchName
}

// TransactionResult is what a finished transaction reports to its caller.
type TransactionResult struct {
	BranchName string
	Issue      string
	Kept       bool // the working branch still exists after restore
}

// RollResult summarises a complete roll.
type RollResult struct {
	UpToDate      bool
	Target        ResolvedRevision
	OldRevision   int
	DepsIssue     string
	DepsBranch    string
	ControlIssue  string
	ControlBranch string
}
