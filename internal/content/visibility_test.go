package content

import (
	"reflect"
	"testing"
)

var postStates = []PostVisibility{PostRegular, PostDeleted, PostHidden, PostDisabled}

var caseStates = []CaseVisibility{
	CaseRegular, CaseDeleted, CasePending, CaseNeedsApproval, CaseHidden, CaseBanned,
}

func TestPostTransitionTable(t *testing.T) {
	tests := []struct {
		name     string
		previous PostVisibility
		next     PostVisibility
		want     []Effect
	}{
		{"delete from regular", PostRegular, PostDeleted, []Effect{EffectDeleteNotifications, EffectIndexDelete, EffectRemoveProfileRef}},
		{"delete from hidden", PostHidden, PostDeleted, []Effect{EffectDeleteNotifications, EffectIndexDelete, EffectRemoveProfileRef}},
		{"delete from disabled", PostDisabled, PostDeleted, []Effect{EffectDeleteNotifications, EffectIndexDelete, EffectRemoveProfileRef}},
		{"edit in place", PostRegular, PostRegular, []Effect{EffectIndexUpdate}},
		{"restore from hidden", PostHidden, PostRegular, []Effect{EffectIndexCreate, EffectSetProfileRef}},
		{"restore from disabled", PostDisabled, PostRegular, []Effect{EffectIndexCreate, EffectSetProfileRef}},
		{"deactivate", PostRegular, PostHidden, []Effect{EffectIndexDelete}},
		{"moderator takedown", PostRegular, PostDisabled, []Effect{EffectIndexDelete, EffectRemoveProfileRef}},
		{"already deleted", PostDeleted, PostDeleted, nil},
		{"hidden to disabled is state-only", PostHidden, PostDisabled, nil},
	}
	for _, tt := range tests {
		if got := PostTransition(tt.previous, tt.next); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("%s: PostTransition(%d, %d) = %v, want %v", tt.name, tt.previous, tt.next, got, tt.want)
		}
	}
}

func TestCaseTransitionTable(t *testing.T) {
	tests := []struct {
		name      string
		previous  CaseVisibility
		next      CaseVisibility
		anonymous bool
		want      []Effect
	}{
		{"delete from regular", CaseRegular, CaseDeleted, false, []Effect{EffectDeleteNotifications, EffectIndexDelete}},
		{"delete while pending approval", CaseNeedsApproval, CaseDeleted, false, []Effect{EffectDeleteNotifications, EffectIndexDelete}},
		{"approval", CaseNeedsApproval, CaseRegular, false, []Effect{EffectRewriteTimestamp, EffectCreateApprovalNotification, EffectIndexCreate, EffectRemoveDraftRef, EffectSetProfileRef}},
		{"anonymous approval", CaseNeedsApproval, CaseRegular, true, []Effect{EffectRewriteTimestamp, EffectCreateApprovalNotification, EffectIndexCreate, EffectRemoveDraftRef}},
		{"unban", CaseBanned, CaseRegular, false, []Effect{EffectIndexCreate, EffectSetProfileRef}},
		{"anonymous unban", CaseBanned, CaseRegular, true, []Effect{EffectIndexCreate}},
		{"unhide keeps everything", CaseHidden, CaseRegular, false, nil},
		{"sent back for revision", CaseRegular, CasePending, false, nil},
		{"resubmitted", CasePending, CaseNeedsApproval, false, nil},
		{"soft-hide keeps index", CaseRegular, CaseHidden, false, nil},
		{"ban", CaseRegular, CaseBanned, false, []Effect{EffectRemoveProfileRef, EffectIndexDelete}},
		{"already deleted", CaseDeleted, CaseDeleted, false, nil},
	}
	for _, tt := range tests {
		if got := CaseTransition(tt.previous, tt.next, tt.anonymous); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("%s: CaseTransition(%d, %d, %v) = %v, want %v", tt.name, tt.previous, tt.next, tt.anonymous, got, tt.want)
		}
	}
}

// Every reachable pair must classify deterministically, and unchanged
// visibility other than a regular-state edit must stay a no-op.
func TestTransitionPartition(t *testing.T) {
	for _, previous := range postStates {
		for _, next := range postStates {
			first := PostTransition(previous, next)
			second := PostTransition(previous, next)
			if !reflect.DeepEqual(first, second) {
				t.Fatalf("post transition (%d, %d) not deterministic", previous, next)
			}
			if previous == next && previous != PostRegular && first != nil {
				t.Errorf("post transition (%d, %d): unchanged state produced effects %v", previous, next, first)
			}
		}
	}
	for _, previous := range caseStates {
		for _, next := range caseStates {
			for _, anonymous := range []bool{false, true} {
				first := CaseTransition(previous, next, anonymous)
				second := CaseTransition(previous, next, anonymous)
				if !reflect.DeepEqual(first, second) {
					t.Fatalf("case transition (%d, %d, %v) not deterministic", previous, next, anonymous)
				}
				if previous == next && first != nil {
					t.Errorf("case transition (%d, %d): unchanged state produced effects %v", previous, next, first)
				}
			}
		}
	}
}

// An anonymous case must never gain a profile reference, whatever the
// transition.
func TestAnonymousNeverGainsProfileReference(t *testing.T) {
	for _, previous := range caseStates {
		for _, next := range caseStates {
			for _, effect := range CaseTransition(previous, next, true) {
				if effect == EffectSetProfileRef {
					t.Errorf("case transition (%d, %d) sets a profile reference for an anonymous case", previous, next)
				}
			}
		}
	}
}

func TestSnapshotTimestampSeconds(t *testing.T) {
	s := Snapshot{TimestampMs: 1700000123999}
	if got := s.TimestampSeconds(); got != 1700000123 {
		t.Errorf("TimestampSeconds = %d, want 1700000123", got)
	}
}

func TestAnonymousOnlyAppliesToCases(t *testing.T) {
	post := Snapshot{Kind: KindPost, Privacy: PrivacyAnonymous}
	if post.Anonymous() {
		t.Error("post reported anonymous; posts have no anonymous mode")
	}
	c := Snapshot{Kind: KindCase, Privacy: PrivacyAnonymous}
	if !c.Anonymous() {
		t.Error("anonymous case not reported anonymous")
	}
}
