package api

import "github.com/gnmanager/casting/pkg/core/casting"

type assignRequest struct {
	ProposalID    *casting.ProposalID `json:"proposal_id" binding:"required"`
	RoleID        int                 `json:"role_id" binding:"required"`
	ParticipantID *int                `json:"participant_id"`
}

type unassignRequest struct {
	ProposalID    *casting.ProposalID `json:"proposal_id" binding:"required"`
	ParticipantID int                 `json:"participant_id" binding:"required"`
}

type updateScoreRequest struct {
	ProposalID *casting.ProposalID `json:"proposal_id" binding:"required"`
	RoleID     int                 `json:"role_id" binding:"required"`
	Score      *int                `json:"score" binding:"required"`
}

type addProposalRequest struct {
	Name string `json:"name"`
}

type deleteProposalRequest struct {
	ProposalID *casting.ProposalID `json:"proposal_id" binding:"required"`
}

type renameProposalRequest struct {
	ProposalID *casting.ProposalID `json:"proposal_id" binding:"required"`
	Name       string              `json:"name"`
}

type toggleValidationRequest struct {
	Validated *bool `json:"validated" binding:"required"`
}

type successResponse struct {
	Success bool `json:"success"`
}

type assignResponse struct {
	Success  bool              `json:"success"`
	Warnings []casting.Warning `json:"warnings"`
}

type proposalResponse struct {
	Success bool               `json:"success"`
	ID      casting.ProposalID `json:"id"`
	Name    string             `json:"name"`
}

type autoAssignResponse struct {
	Success bool `json:"success"`
	casting.AutoAssignResult
}

type toggleValidationResponse struct {
	Success            bool `json:"success"`
	IsCastingValidated bool `json:"is_casting_validated"`
}

type resetMainResponse struct {
	Success bool `json:"success"`
	Count   int  `json:"count"`
}

type warningsResponse struct {
	Success  bool              `json:"success"`
	Warnings []casting.Warning `json:"warnings"`
}
