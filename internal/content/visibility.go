package content

// PostVisibility is the lifecycle state of a post.
type PostVisibility int

const (
	PostRegular  PostVisibility = 0
	PostDeleted  PostVisibility = 1
	PostHidden   PostVisibility = 2 // owner deactivated their account
	PostDisabled PostVisibility = 3 // moderator takedown
)

// CaseVisibility is the lifecycle state of a clinical case. A case starts
// at CaseNeedsApproval and only becomes publicly listed after a moderator
// moves it to CaseRegular.
type CaseVisibility int

const (
	CaseRegular       CaseVisibility = 0
	CaseDeleted       CaseVisibility = 1
	CasePending       CaseVisibility = 2 // sent back for owner revision
	CaseNeedsApproval CaseVisibility = 3 // queued for moderation
	CaseHidden        CaseVisibility = 4 // moderator soft-hide
	CaseBanned        CaseVisibility = 5 // moderator hard-ban
)

// Effect identifies one side effect a visibility transition requires. The
// trigger handlers translate each effect into a call against the search
// index, the reference tree, the notification store or the primary store.
type Effect int

const (
	EffectIndexCreate Effect = iota
	EffectIndexUpdate
	EffectIndexDelete
	EffectSetProfileRef
	EffectRemoveProfileRef
	EffectRemoveDraftRef
	EffectDeleteNotifications
	EffectCreateApprovalNotification
	EffectRewriteTimestamp
)

// PostTransition maps a post's (previous, new) visibility pair to its
// effect set. Every pair lands in exactly one branch; pairs that are not
// listed, including unchanged visibility, are state-only moves with no
// effects. Field edits while the post stays regular refresh the index
// entry in place.
func PostTransition(previous, next PostVisibility) []Effect {
	switch next {
	case PostDeleted:
		if previous == PostDeleted {
			return nil
		}
		return []Effect{EffectDeleteNotifications, EffectIndexDelete, EffectRemoveProfileRef}
	case PostRegular:
		switch previous {
		case PostRegular:
			return []Effect{EffectIndexUpdate}
		case PostHidden, PostDisabled:
			return []Effect{EffectIndexCreate, EffectSetProfileRef}
		}
		return nil
	case PostHidden:
		// Deactivation pulls the post out of search but keeps the
		// profile reference and notifications; the post is still
		// attributable to the owner.
		if previous == PostRegular {
			return []Effect{EffectIndexDelete}
		}
		return nil
	case PostDisabled:
		if previous == PostRegular {
			return []Effect{EffectIndexDelete, EffectRemoveProfileRef}
		}
		return nil
	}
	return nil
}

// CaseTransition maps a case's (previous, new) visibility pair to its
// effect set. anonymous suppresses every profile-reference creation so an
// anonymous case is never attributable through the reference tree.
//
// Unlike posts, a soft-hidden case keeps its index entry; see the
// CaseHidden branch.
func CaseTransition(previous, next CaseVisibility, anonymous bool) []Effect {
	switch next {
	case CaseDeleted:
		if previous == CaseDeleted {
			return nil
		}
		return []Effect{EffectDeleteNotifications, EffectIndexDelete}
	case CaseRegular:
		switch previous {
		case CaseNeedsApproval:
			// Moderator approval: the record's timestamp is rewritten
			// so approval time, not submission time, drives ordering.
			effects := []Effect{
				EffectRewriteTimestamp,
				EffectCreateApprovalNotification,
				EffectIndexCreate,
				EffectRemoveDraftRef,
			}
			if !anonymous {
				effects = append(effects, EffectSetProfileRef)
			}
			return effects
		case CaseBanned:
			effects := []Effect{EffectIndexCreate}
			if !anonymous {
				effects = append(effects, EffectSetProfileRef)
			}
			return effects
		}
		// CaseHidden -> CaseRegular: index and references survived the
		// soft-hide, so there is nothing to replay.
		return nil
	case CaseBanned:
		if previous == CaseRegular {
			return []Effect{EffectRemoveProfileRef, EffectIndexDelete}
		}
		return nil
	}
	// CasePending, CaseNeedsApproval and CaseHidden are state-only moves:
	// resubmission bookkeeping and soft-hide keep the secondary stores
	// untouched.
	return nil
}
