package legacy

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/odyssey-erp/productmanage/internal/shared"
	"github.com/odyssey-erp/productmanage/internal/supplies"
)

// Prepare normalises a snapshot for the PostgreSQL schema: lower-cased role codes and
// supply statuses, bcrypt hashes in place of plaintext passwords, dangling optional
// references cleared. Rows the target constraints would reject are reported together.
func Prepare(snap Snapshot, cost int) (Snapshot, error) {
	problems := map[string]string{}
	out := snap

	out.Roles = make([]Role, len(snap.Roles))
	for i, r := range snap.Roles {
		r.Code = strings.ToLower(strings.TrimSpace(r.Code))
		out.Roles[i] = r
	}

	out.Users = make([]User, len(snap.Users))
	for i, u := range snap.Users {
		u.Username = strings.TrimSpace(u.Username)
		u.Role = strings.ToLower(strings.TrimSpace(u.Role))
		if !isBcrypt(u.Password) {
			hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), cost)
			if err != nil {
				problems[fmt.Sprintf("users[%d].password", u.ID)] = err.Error()
			}
			u.Password = string(hash)
		}
		out.Users[i] = u
	}

	categories := make(map[int64]struct{}, len(snap.Categories))
	for _, c := range snap.Categories {
		categories[c.ID] = struct{}{}
	}
	suppliers := make(map[int64]struct{}, len(snap.Suppliers))
	for _, s := range snap.Suppliers {
		suppliers[s.ID] = struct{}{}
	}

	out.Products = make([]Product, len(snap.Products))
	for i, p := range snap.Products {
		if p.CategoryID != nil {
			if _, ok := categories[*p.CategoryID]; !ok {
				p.CategoryID = nil
			}
		}
		if !p.Price.IsPositive() {
			problems[fmt.Sprintf("products[%d].price", p.ID)] = "must be positive"
		}
		if p.Quantity < 0 {
			problems[fmt.Sprintf("products[%d].quantity", p.ID)] = "must not be negative"
		}
		out.Products[i] = p
	}

	out.Supplies = make([]Supply, len(snap.Supplies))
	for i, s := range snap.Supplies {
		s.Status = strings.ToLower(strings.TrimSpace(s.Status))
		if s.Status == "" {
			s.Status = supplies.StatusPending
		}
		if !supplies.ValidStatus(s.Status) {
			problems[fmt.Sprintf("supplies[%d].status", s.ID)] = "unknown status " + s.Status
		}
		if s.SupplierID != nil {
			if _, ok := suppliers[*s.SupplierID]; !ok {
				s.SupplierID = nil
			}
		}
		out.Supplies[i] = s
	}

	for _, op := range snap.Operations {
		if !op.Amount.IsPositive() {
			problems[fmt.Sprintf("financial_operations[%d].amount", op.ID)] = "must be positive"
		}
	}

	if len(problems) > 0 {
		return Snapshot{}, &shared.ValidationError{Fields: problems}
	}
	return out, nil
}

func isBcrypt(password string) bool {
	if len(password) != 60 {
		return false
	}
	_, err := bcrypt.Cost([]byte(password))
	return err == nil
}
