package worklog_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/shiftclock"
	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/worklog"
)

var at = time.Date(2025, time.December, 5, 10, 10, 0, 0, time.UTC)

func draft() *domain.Worklog {
	return worklog.NewDraft(shiftclock.Date(2025, time.December, 5), domain.ShiftTypeDay, &domain.Team{ID: 3, Name: "1조"}, false)
}

func TestNewDraft(t *testing.T) {
	w := worklog.NewDraft(shiftclock.Date(2025, time.December, 5), domain.ShiftTypeNight, &domain.Team{ID: 3, Name: "1조"}, true)

	assert.Equal(t, domain.WorklogStatusDraft, w.Status)
	assert.Equal(t, int64(3), w.TeamID)
	assert.True(t, w.IsAutoCreated)
	assert.Equal(t, domain.EmptyWorkers(), w.Workers)
	assert.Empty(t, w.Signatures)
	assert.Empty(t, w.SystemIssues)
}

func TestSign(t *testing.T) {
	w := draft()

	patch, err := worklog.Sign(w, domain.SignatureRoleMCR, "kim", at)
	require.NoError(t, err)
	assert.Equal(t, domain.WorklogStatusDraft, patch.Status)
	assert.Equal(t, "kim", patch.Signatures[domain.SignatureRoleMCR].Signer)
	assert.False(t, w.Signatures.Has(domain.SignatureRoleMCR), "sign must not mutate the record")

	worklog.Apply(w, patch)
	_, err = worklog.Sign(w, domain.SignatureRoleMCR, "lee", at)
	assert.ErrorIs(t, err, domain.ErrAlreadySigned)
}

func TestSignLastRoleCloses(t *testing.T) {
	w := draft()

	for i, role := range domain.SignatureRoles {
		patch, err := worklog.Sign(w, role, "kim", at)
		require.NoError(t, err)
		worklog.Apply(w, patch)

		if i < len(domain.SignatureRoles)-1 {
			assert.Equal(t, domain.WorklogStatusDraft, w.Status)
		}
	}

	assert.Equal(t, domain.WorklogStatusClosed, w.Status)
	assert.False(t, worklog.Closable(w))

	_, err := worklog.Sign(w, domain.SignatureRoleNetwork, "kim", at)
	assert.ErrorIs(t, err, domain.ErrWorklogClosed)
}

func TestFinalize(t *testing.T) {
	w := draft()

	patch, err := worklog.Finalize(w, "kim", at)
	require.NoError(t, err)
	assert.Equal(t, domain.WorklogStatusClosed, patch.Status)
	require.Len(t, patch.SystemIssues, 1)
	assert.Equal(t, "kim", patch.SystemIssues[0].Author)
	assert.Empty(t, patch.Signatures)

	worklog.Apply(w, patch)
	_, err = worklog.Finalize(w, "kim", at)
	assert.ErrorIs(t, err, domain.ErrWorklogClosed)
}

func TestAutoCloseWithoutPreSign(t *testing.T) {
	w := draft()
	w.Signatures[domain.SignatureRoleMCR] = &domain.Signature{Signer: "kim", SignedAt: at.Add(-time.Hour)}

	patch, ok := worklog.AutoClose(w, 10, at)
	require.True(t, ok)

	assert.Equal(t, domain.WorklogStatusClosed, patch.Status)
	assert.Equal(t, "kim", patch.Signatures[domain.SignatureRoleMCR].Signer)
	for _, role := range []domain.SignatureRole{domain.SignatureRoleOperation, domain.SignatureRoleTeamLeader, domain.SignatureRoleNetwork} {
		require.NotNil(t, patch.Signatures[role], role)
		assert.Equal(t, domain.SystemSigner, patch.Signatures[role].Signer)
		assert.True(t, patch.Signatures[role].System)
	}

	require.Len(t, patch.SystemIssues, 1)
	assert.Equal(t, domain.SystemAuthor, patch.SystemIssues[0].Author)
	assert.Contains(t, patch.SystemIssues[0].Summary, "19:00")
	assert.Contains(t, patch.SystemIssues[0].Summary, "10 分钟")
	assert.NotEmpty(t, patch.SystemIssues[0].ID)
}

func TestAutoClosePreSigned(t *testing.T) {
	w := draft()
	w.ShiftType = domain.ShiftTypeNight
	w.Signatures[domain.PreSignRole] = &domain.Signature{Signer: "lee", SignedAt: at.Add(-time.Hour)}

	patch, ok := worklog.AutoClose(w, 10, at)
	require.True(t, ok)

	assert.Equal(t, "lee", patch.Signatures[domain.PreSignRole].Signer)
	assert.False(t, patch.Signatures[domain.PreSignRole].System)
	assert.True(t, patch.Signatures.Complete())
	require.Len(t, patch.SystemIssues, 1)
	assert.Contains(t, patch.SystemIssues[0].Summary, "事先签名")
	assert.Contains(t, patch.SystemIssues[0].Summary, "08:00")
}

func TestAutoCloseSkipsTerminalRecords(t *testing.T) {
	closed := draft()
	closed.Status = domain.WorklogStatusClosed
	_, ok := worklog.AutoClose(closed, 10, at)
	assert.False(t, ok)

	signed := draft()
	for _, role := range domain.SignatureRoles {
		signed.Signatures[role] = &domain.Signature{Signer: "kim", SignedAt: at}
	}
	_, ok = worklog.AutoClose(signed, 10, at)
	assert.False(t, ok)
}

func TestAutoCloseKeepsExistingIssues(t *testing.T) {
	w := draft()
	w.SystemIssues = append(w.SystemIssues, worklog.NewIssue("送信机报警", "kim", at.Add(-2*time.Hour)))

	patch, ok := worklog.AutoClose(w, 10, at)
	require.True(t, ok)
	require.Len(t, patch.SystemIssues, 2)
	assert.Equal(t, "送信机报警", patch.SystemIssues[0].Summary)
	assert.Len(t, w.SystemIssues, 1)
}
