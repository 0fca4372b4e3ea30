package loan

import "github.com/nerrad567/radioloan-core/internal/device"

// CanBorrow reports whether d may be loaned out.
//
// This is only a pre-check. Create re-applies the same condition as the
// WHERE clause of its status update.
func CanBorrow(d *device.Device) bool {
	return d != nil && d.Status == device.StatusAvailable
}

// CanReturn reports whether l is still open.
func CanReturn(l *Loan) bool {
	return l != nil && l.ReturnedAt == nil
}
