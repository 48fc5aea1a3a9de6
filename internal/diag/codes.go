package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Configuration
	CfgMissingSourceRoot Code = 1001
	CfgMissingBuildRoot  Code = 1002
	CfgBadJobs           Code = 1003
	CfgBadExtraArgs      Code = 1004

	// Source collection
	ColNoUnits    Code = 2001
	ColUnreadable Code = 2003

	// Dependency solving
	DepUnresolved  Code = 3001
	DepCycle       Code = 3002
	DepSelfImport  Code = 3003
	DepListMissing Code = 3004
	DepListCorrupt Code = 3005

	// Build actions
	ActPreambleFailed Code = 4001
	ActParseFailed    Code = 4002
	ActDeclFailed     Code = 4003
	ActObjectFailed   Code = 4004
	ActHeaderFailed   Code = 4005
	ActLinkFailed     Code = 4006

	// Hash-meta bookkeeping
	MetaUnreadable Code = 5001
	MetaStale      Code = 5002
)

func (c Code) String() string {
	return fmt.Sprintf("STR%04d", uint16(c))
}
