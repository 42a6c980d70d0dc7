package repository

import (
	"testing"

	"github.com/paike/paike/pkg/model"
)

func TestValidateBlockedSlot(t *testing.T) {
	tests := []struct {
		name    string
		block   *model.BlockedTimeSlot
		wantErr bool
	}{
		{
			"全局封锁",
			&model.BlockedTimeSlot{ID: 1, TimeSlotID: 1, Scope: model.BlockScopeGlobal, IsActive: true},
			false,
		},
		{
			"专业封锁带专业",
			&model.BlockedTimeSlot{ID: 2, TimeSlotID: 1, Scope: model.BlockScopeCareer, CareerID: 5, IsActive: true},
			false,
		},
		{
			"专业封锁缺专业",
			&model.BlockedTimeSlot{ID: 3, TimeSlotID: 1, Scope: model.BlockScopeCareer, IsActive: true},
			true,
		},
		{
			"教室封锁缺教室",
			&model.BlockedTimeSlot{ID: 4, TimeSlotID: 1, Scope: model.BlockScopeClassroom, IsActive: true},
			true,
		},
		{
			"全局封锁混入了教室",
			&model.BlockedTimeSlot{ID: 5, TimeSlotID: 1, Scope: model.BlockScopeGlobal, ClassroomID: 7, IsActive: true},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateBlockedSlot(tt.block)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateBlockedSlot() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
