package registration

import (
	"errors"

	"github.com/seqsense/pcreg/pcd/sac"
)

var (
	// ErrDegenerateSample is returned when the correspondences do not
	// determine a rigid transform, e.g. less than three or collinear pairs.
	ErrDegenerateSample = errors.New("degenerate sample")
	// ErrSingularLinearSystem is returned when the linearized system
	// can not be solved stably.
	ErrSingularLinearSystem = errors.New("singular linear system")
	// ErrSizeMismatch is returned when paired inputs differ in length.
	ErrSizeMismatch = errors.New("size mismatch")

	// ErrConsensusFailure is returned when no hypothesis gathered enough support.
	ErrConsensusFailure = sac.ErrConsensusFailure
	// ErrInvalidParameter is returned on a configuration which makes the search impossible.
	ErrInvalidParameter = sac.ErrInvalidParameter
)
