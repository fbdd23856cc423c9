package messages

import (
	"fmt"
	"strings"
)

// Fixed replies
const (
	AuthErrorMessage       = "認証エラー：管理者にご確認ください。"
	LookupFailedMessage    = "ユーザー一覧の取得に失敗しました。"
	EmptyDirectoryMessage  = "ユーザーが見つかりませんでした。権限設定を確認してください。"
	NoDepartmentLabel      = "なし"
	UnavailableRosterLabel = "取得不可"
)

// Candidate is one matched user as shown in the reply
type Candidate struct {
	Name           string
	DepartmentName string // empty when the user has no department
	// Members lists the department roster. Rosters built from a directory
	// snapshot always contain the matched user; an empty list only reaches
	// the formatter from other callers and renders as UnavailableRosterLabel.
	Members []string
}

// FormatNotFoundMessage formats the reply when nobody matches the text
func FormatNotFoundMessage(text string) string {
	return fmt.Sprintf("「%s」に一致するユーザーが見つかりませんでした。", text)
}

// FormatCandidate formats a single matched user
func FormatCandidate(c Candidate) string {
	if c.DepartmentName == "" {
		return fmt.Sprintf("候補者: %s\n所属部署: %s\n部署メンバー: %s\n", c.Name, NoDepartmentLabel, NoDepartmentLabel)
	}

	var members string
	if len(c.Members) > 0 {
		members = "\n- " + strings.Join(c.Members, "\n- ")
	} else {
		members = " " + UnavailableRosterLabel
	}
	return fmt.Sprintf("候補者: %s\n所属部署: %s\n部署メンバー:%s\n", c.Name, c.DepartmentName, members)
}

// FormatCandidates joins the blocks of every matched user
func FormatCandidates(candidates []Candidate) string {
	blocks := make([]string, 0, len(candidates))
	for _, c := range candidates {
		blocks = append(blocks, FormatCandidate(c))
	}
	return strings.Join(blocks, "\n")
}
