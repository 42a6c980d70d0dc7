package repository

import "testing"

func TestListFilter(t *testing.T) {
	f := DefaultListFilter()
	if f.Limit != 20 || f.Offset != 0 {
		t.Errorf("默认过滤器 = limit %d offset %d, expected 20/0", f.Limit, f.Offset)
	}

	filtered := f.WithPeriod(3).WithCareer(7).WithStatus("completed")
	if filtered.PeriodID != 3 || filtered.CareerID != 7 || filtered.Status != "completed" {
		t.Errorf("链式设置结果 = %+v", filtered)
	}

	// 值语义：链式调用不改动原过滤器
	if f.PeriodID != 0 || f.Status != "" {
		t.Errorf("原过滤器被修改: %+v", f)
	}
}
