// Package worklog 定义工作日志的状态转换。
//
// 这里的函数都不写库，只根据当前记录计算出补丁，补丁必须通过
// 以状态和版本号为条件的更新写回，这样并发的签名与自动关闭不会互相覆盖。
package worklog

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/shiftclock"
)

// NewDraft 创建一条新的草稿，auto 表示由系统而不是人创建
func NewDraft(date time.Time, shiftType domain.ShiftType, team *domain.Team, auto bool) *domain.Worklog {
	return &domain.Worklog{
		Date:          shiftclock.DateOf(date),
		ShiftType:     shiftType,
		TeamID:        team.ID,
		TeamName:      team.Name,
		Status:        domain.WorklogStatusDraft,
		Workers:       domain.EmptyWorkers(),
		Signatures:    domain.Signatures{},
		SystemIssues:  []domain.SystemIssue{},
		IsAutoCreated: auto,
	}
}

func NewIssue(summary, author string, at time.Time) domain.SystemIssue {
	return domain.SystemIssue{
		ID:        uuid.NewString(),
		Summary:   summary,
		Author:    author,
		CreatedAt: at,
	}
}

// Closable 报告自动关闭是否需要处理这条记录
func Closable(w *domain.Worklog) bool {
	return w.Status == domain.WorklogStatusDraft && !w.Signatures.Complete()
}

func Sign(w *domain.Worklog, role domain.SignatureRole, signer string, at time.Time) (domain.WorklogPatch, error) {
	if w.Status == domain.WorklogStatusClosed {
		return domain.WorklogPatch{}, domain.ErrWorklogClosed
	}
	if w.Signatures.Has(role) {
		return domain.WorklogPatch{}, fmt.Errorf("%w: %s", domain.ErrAlreadySigned, role)
	}

	signatures := w.Signatures.Clone()
	signatures[role] = &domain.Signature{Signer: signer, SignedAt: at}

	status := domain.WorklogStatusDraft
	if signatures.Complete() {
		status = domain.WorklogStatusClosed
	}

	return domain.WorklogPatch{
		Status:       status,
		Signatures:   signatures,
		SystemIssues: slices.Clone(w.SystemIssues),
	}, nil
}

// Finalize 是人工提前结束，签名保持原样
func Finalize(w *domain.Worklog, by string, at time.Time) (domain.WorklogPatch, error) {
	if w.Status == domain.WorklogStatusClosed {
		return domain.WorklogPatch{}, domain.ErrWorklogClosed
	}

	issues := append(slices.Clone(w.SystemIssues), NewIssue(fmt.Sprintf("%s 手动结束了工作日志", by), by, at))

	return domain.WorklogPatch{
		Status:       domain.WorklogStatusClosed,
		Signatures:   w.Signatures.Clone(),
		SystemIssues: issues,
	}, nil
}

// AutoClose 计算超时关闭的补丁。
// 值班签名角色已签时视为事先批准，否则视为超时；两种情况都只给空缺的角色补系统签名。
// 记录已关闭或已全部签名时返回 false。
func AutoClose(w *domain.Worklog, graceMinutes int, at time.Time) (domain.WorklogPatch, bool) {
	if !Closable(w) {
		return domain.WorklogPatch{}, false
	}

	signatures := w.Signatures.Clone()
	for _, role := range domain.SignatureRoles {
		if !signatures.Has(role) {
			signatures[role] = &domain.Signature{
				Signer:   domain.SystemSigner,
				SignedAt: at,
				System:   true,
			}
		}
	}

	closeAt := shiftclock.FormatClock(shiftclock.ShiftCloseMinute(w.ShiftType))
	var summary string
	if w.Signatures.Has(domain.PreSignRole) {
		summary = fmt.Sprintf("班次已事先签名确认，%s 结束后由系统自动关闭", closeAt)
	} else {
		summary = fmt.Sprintf("超过班次结束时间（%s）%d 分钟仍未签名，系统自动关闭", closeAt, graceMinutes)
	}

	return domain.WorklogPatch{
		Status:       domain.WorklogStatusClosed,
		Signatures:   signatures,
		SystemIssues: append(slices.Clone(w.SystemIssues), NewIssue(summary, domain.SystemAuthor, at)),
	}, true
}

// Apply 把补丁写到内存中的记录上，供存储层在更新成功后同步使用
func Apply(w *domain.Worklog, patch domain.WorklogPatch) {
	w.Status = patch.Status
	w.Signatures = patch.Signatures
	w.SystemIssues = patch.SystemIssues
}
