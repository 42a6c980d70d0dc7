package view

import (
	"sort"

	"github.com/paike/paike/pkg/model"
)

// GridCell 周视图单元格中的一节课
type GridCell struct {
	SubjectName   string `json:"subject_name"`
	SubjectCode   string `json:"subject_code"`
	GroupCode     string `json:"group_code"`
	TeacherName   string `json:"teacher_name"`
	ClassroomCode string `json:"classroom_code"`
	SessionType   string `json:"session_type"`
	IsLocked      bool   `json:"is_locked"`
}

// GridRow 周视图中的一个时间行
// Cells 与 Grid.Days 同长度同顺序，一格可含并行的多节课（不同分组）
type GridRow struct {
	StartTime string       `json:"start_time"`
	EndTime   string       `json:"end_time"`
	Cells     [][]GridCell `json:"cells"`
}

// Grid 课表周视图：天 × 时间行的矩阵
type Grid struct {
	Days []string  `json:"days"`
	Rows []GridRow `json:"rows"`
}

// BuildGrid 从展示记录构造周视图
// 只包含实际出现过课的天和时间行，行按开始时间排序
func BuildGrid(entries []Entry) *Grid {
	daySet := make(map[int]bool)
	type rowKey struct{ start, end string }
	rowSet := make(map[rowKey]bool)
	for _, e := range entries {
		daySet[e.Day] = true
		rowSet[rowKey{e.StartTime, e.EndTime}] = true
	}

	days := make([]int, 0, len(daySet))
	for d := range daySet {
		days = append(days, d)
	}
	sort.Ints(days)
	dayIndex := make(map[int]int, len(days))
	grid := &Grid{Days: make([]string, len(days))}
	for i, d := range days {
		grid.Days[i] = model.WeekdayName(d)
		dayIndex[d] = i
	}

	rows := make([]rowKey, 0, len(rowSet))
	for r := range rowSet {
		rows = append(rows, r)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].start != rows[j].start {
			return rows[i].start < rows[j].start
		}
		return rows[i].end < rows[j].end
	})

	rowIndex := make(map[rowKey]int, len(rows))
	grid.Rows = make([]GridRow, len(rows))
	for i, r := range rows {
		rowIndex[r] = i
		grid.Rows[i] = GridRow{
			StartTime: r.start,
			EndTime:   r.end,
			Cells:     make([][]GridCell, len(days)),
		}
	}

	for _, e := range entries {
		ri := rowIndex[rowKey{e.StartTime, e.EndTime}]
		di := dayIndex[e.Day]
		grid.Rows[ri].Cells[di] = append(grid.Rows[ri].Cells[di], GridCell{
			SubjectName:   e.SubjectName,
			SubjectCode:   e.SubjectCode,
			GroupCode:     e.GroupCode,
			TeacherName:   e.TeacherName,
			ClassroomCode: e.ClassroomCode,
			SessionType:   e.SessionType,
			IsLocked:      e.IsLocked,
		})
	}
	return grid
}
