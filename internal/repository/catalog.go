package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	apperrors "github.com/paike/paike/pkg/errors"
	"github.com/paike/paike/pkg/model"
	"github.com/paike/paike/pkg/scheduler"
)

// CatalogRepository 排课输入目录的数据访问
// 一次性装配求解器需要的完整快照，之后的求解过程不再访问数据库
type CatalogRepository struct {
	db DB
}

// NewCatalogRepository 创建目录仓储
func NewCatalogRepository(db DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// LoadSnapshot 装配某学期的完整排课快照
func (r *CatalogRepository) LoadSnapshot(ctx context.Context, periodID int64) (*scheduler.Snapshot, error) {
	snap := scheduler.NewSnapshot(periodID)

	var err error
	if snap.TimeSlots, err = r.loadTimeSlots(ctx, periodID); err != nil {
		return nil, err
	}
	if snap.Classrooms, err = r.loadClassrooms(ctx); err != nil {
		return nil, err
	}
	if snap.Teachers, err = r.loadTeachers(ctx); err != nil {
		return nil, err
	}
	if snap.Careers, err = r.loadCareers(ctx); err != nil {
		return nil, err
	}
	if snap.Assignments, err = r.loadAssignments(ctx, periodID); err != nil {
		return nil, err
	}
	if snap.Availability, err = r.loadAvailability(ctx, periodID); err != nil {
		return nil, err
	}
	if snap.Preferences, err = r.loadPreferences(ctx, periodID); err != nil {
		return nil, err
	}
	if snap.BlockedSlots, err = r.loadBlockedSlots(ctx, periodID); err != nil {
		return nil, err
	}
	if snap.RoleHours, err = r.loadRoleHours(ctx, periodID); err != nil {
		return nil, err
	}
	if snap.CareerSubjects, err = r.loadCareerSubjects(ctx, periodID); err != nil {
		return nil, err
	}

	snap.BuildIndexes()
	return snap, nil
}

// loadTimeSlots 加载学期内的全部时段
func (r *CatalogRepository) loadTimeSlots(ctx context.Context, periodID int64) ([]*model.TimeSlot, error) {
	query := `
		SELECT id, academic_period_id, day_of_week,
		       to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'), is_active
		FROM time_slots
		WHERE academic_period_id = $1
		ORDER BY day_of_week, start_time`

	rows, err := r.db.QueryContext(ctx, query, periodID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "加载时段失败")
	}
	defer rows.Close()

	var slots []*model.TimeSlot
	for rows.Next() {
		ts := &model.TimeSlot{}
		if err := rows.Scan(&ts.ID, &ts.PeriodID, &ts.DayOfWeek, &ts.StartTime, &ts.EndTime, &ts.IsActive); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "扫描时段失败")
		}
		ts.Normalize()
		slots = append(slots, ts)
	}
	return slots, rows.Err()
}

// loadClassrooms 加载全部教室
func (r *CatalogRepository) loadClassrooms(ctx context.Context) ([]*model.Classroom, error) {
	query := `
		SELECT id, code, name, COALESCE(building, ''), capacity, is_active
		FROM classrooms
		ORDER BY code`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "加载教室失败")
	}
	defer rows.Close()

	var rooms []*model.Classroom
	for rows.Next() {
		c := &model.Classroom{}
		if err := rows.Scan(&c.ID, &c.Code, &c.Name, &c.Building, &c.Capacity, &c.IsActive); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "扫描教室失败")
		}
		rooms = append(rooms, c)
	}
	return rooms, rows.Err()
}

// loadTeachers 加载教师与授课资格
func (r *CatalogRepository) loadTeachers(ctx context.Context) ([]*model.Teacher, error) {
	query := `
		SELECT t.id, t.name, COALESCE(t.department, ''), t.status,
		       COALESCE(ARRAY_AGG(DISTINCT qs.subject_id) FILTER (WHERE qs.subject_id IS NOT NULL), '{}'),
		       COALESCE(ARRAY_AGG(DISTINCT qc.career_id) FILTER (WHERE qc.career_id IS NOT NULL), '{}')
		FROM teachers t
		LEFT JOIN teacher_qualified_subjects qs ON qs.teacher_id = t.id
		LEFT JOIN teacher_qualified_careers qc ON qc.teacher_id = t.id
		GROUP BY t.id, t.name, t.department, t.status
		ORDER BY t.id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "加载教师失败")
	}
	defer rows.Close()

	var teachers []*model.Teacher
	for rows.Next() {
		t := &model.Teacher{}
		if err := rows.Scan(&t.ID, &t.Name, &t.Department, &t.Status,
			pq.Array(&t.QualifiedSubjectIDs), pq.Array(&t.QualifiedCareerIDs)); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "扫描教师失败")
		}
		teachers = append(teachers, t)
	}
	return teachers, rows.Err()
}

// loadCareers 加载全部专业
func (r *CatalogRepository) loadCareers(ctx context.Context) ([]*model.Career, error) {
	query := `SELECT id, code, name, is_active FROM careers ORDER BY code`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "加载专业失败")
	}
	defer rows.Close()

	var careers []*model.Career
	for rows.Next() {
		c := &model.Career{}
		if err := rows.Scan(&c.ID, &c.Code, &c.Name, &c.IsActive); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "扫描专业失败")
		}
		careers = append(careers, c)
	}
	return careers, rows.Err()
}

// loadAssignments 加载学期内的教学任务
func (r *CatalogRepository) loadAssignments(ctx context.Context, periodID int64) ([]*model.TeachingAssignment, error) {
	query := `
		SELECT a.id, a.teacher_id, a.subject_group_id,
		       s.id, s.name, s.code, s.course_year,
		       g.group_code, g.capacity, s.weekly_hours, a.status
		FROM teacher_assignments a
		JOIN subject_groups g ON g.id = a.subject_group_id
		JOIN subjects s ON s.id = g.subject_id
		WHERE g.academic_period_id = $1
		ORDER BY a.id`

	rows, err := r.db.QueryContext(ctx, query, periodID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "加载教学任务失败")
	}
	defer rows.Close()

	var assignments []*model.TeachingAssignment
	for rows.Next() {
		a := &model.TeachingAssignment{}
		if err := rows.Scan(&a.ID, &a.TeacherID, &a.SubjectGroupID,
			&a.SubjectID, &a.SubjectName, &a.SubjectCode, &a.CourseYear,
			&a.GroupCode, &a.GroupCapacity, &a.WeeklyHours, &a.Status); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "扫描教学任务失败")
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

// loadAvailability 加载教师可用性限制
func (r *CatalogRepository) loadAvailability(ctx context.Context, periodID int64) (map[int64]*model.TeacherAvailability, error) {
	query := `
		SELECT a.teacher_id, a.academic_period_id, a.availability_type,
		       a.max_teaching_hours, COALESCE(a.restriction_reason, ''), a.is_active,
		       COALESCE(ARRAY_AGG(DISTINCT als.time_slot_id) FILTER (WHERE als.time_slot_id IS NOT NULL), '{}'),
		       COALESCE(ARRAY_AGG(DISTINCT abd.day_of_week) FILTER (WHERE abd.day_of_week IS NOT NULL), '{}')
		FROM teacher_availability a
		LEFT JOIN availability_allowed_slots als ON als.availability_id = a.id
		LEFT JOIN availability_blocked_days abd ON abd.availability_id = a.id
		WHERE a.academic_period_id = $1
		GROUP BY a.id, a.teacher_id, a.academic_period_id, a.availability_type,
		         a.max_teaching_hours, a.restriction_reason, a.is_active`

	rows, err := r.db.QueryContext(ctx, query, periodID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "加载教师可用性失败")
	}
	defer rows.Close()

	result := make(map[int64]*model.TeacherAvailability)
	for rows.Next() {
		av := &model.TeacherAvailability{}
		var maxHours sql.NullInt64
		var blockedDays []int64
		if err := rows.Scan(&av.TeacherID, &av.PeriodID, &av.Type,
			&maxHours, &av.Reason, &av.IsActive,
			pq.Array(&av.AllowedSlotIDs), pq.Array(&blockedDays)); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "扫描教师可用性失败")
		}
		if maxHours.Valid {
			h := int(maxHours.Int64)
			av.MaxTeachingHours = &h
		}
		for _, d := range blockedDays {
			av.BlockedDays = append(av.BlockedDays, int(d))
		}
		result[av.TeacherID] = av
	}
	return result, rows.Err()
}

// loadPreferences 加载教师偏好
func (r *CatalogRepository) loadPreferences(ctx context.Context, periodID int64) (map[int64]*model.TeacherPreference, error) {
	query := `
		SELECT p.teacher_id, p.academic_period_id,
		       COALESCE(p.max_hours_per_week, 0), COALESCE(p.max_consecutive_hours, 0),
		       COALESCE(p.max_daily_hours, 0),
		       COALESCE(to_char(p.preferred_start_time, 'HH24:MI'), ''),
		       COALESCE(to_char(p.preferred_end_time, 'HH24:MI'), ''),
		       COALESCE(ARRAY_AGG(DISTINCT pd.day_of_week) FILTER (WHERE pd.day_of_week IS NOT NULL), '{}'),
		       COALESCE(ARRAY_AGG(DISTINCT pu.time_slot_id) FILTER (WHERE pu.time_slot_id IS NOT NULL), '{}')
		FROM teacher_preferences p
		LEFT JOIN preference_preferred_days pd ON pd.preference_id = p.id
		LEFT JOIN preference_unavailable_slots pu ON pu.preference_id = p.id
		WHERE p.academic_period_id = $1
		GROUP BY p.id, p.teacher_id, p.academic_period_id, p.max_hours_per_week,
		         p.max_consecutive_hours, p.max_daily_hours,
		         p.preferred_start_time, p.preferred_end_time`

	rows, err := r.db.QueryContext(ctx, query, periodID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "加载教师偏好失败")
	}
	defer rows.Close()

	result := make(map[int64]*model.TeacherPreference)
	for rows.Next() {
		p := &model.TeacherPreference{}
		var preferredDays []int64
		if err := rows.Scan(&p.TeacherID, &p.PeriodID,
			&p.MaxHoursPerWeek, &p.MaxConsecutiveHours, &p.MaxDailyHours,
			&p.PreferredStartTime, &p.PreferredEndTime,
			pq.Array(&preferredDays), pq.Array(&p.UnavailableSlotIDs)); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "扫描教师偏好失败")
		}
		for _, d := range preferredDays {
			p.PreferredDays = append(p.PreferredDays, int(d))
		}
		result[p.TeacherID] = p
	}
	return result, rows.Err()
}

// loadBlockedSlots 加载封锁时段
func (r *CatalogRepository) loadBlockedSlots(ctx context.Context, periodID int64) ([]*model.BlockedTimeSlot, error) {
	query := `
		SELECT id, academic_period_id, time_slot_id, scope,
		       COALESCE(career_id, 0), COALESCE(classroom_id, 0),
		       COALESCE(reason, ''), is_active
		FROM blocked_time_slots
		WHERE academic_period_id = $1`

	rows, err := r.db.QueryContext(ctx, query, periodID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "加载封锁时段失败")
	}
	defer rows.Close()

	var blocks []*model.BlockedTimeSlot
	for rows.Next() {
		b := &model.BlockedTimeSlot{}
		if err := rows.Scan(&b.ID, &b.PeriodID, &b.TimeSlotID, &b.Scope,
			&b.CareerID, &b.ClassroomID, &b.Reason, &b.IsActive); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "扫描封锁时段失败")
		}
		if err := validateBlockedSlot(b); err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, rows.Err()
}

// validateBlockedSlot 逐行校验封锁配置，范围与目标不一致的数据直接报错而不是带病进入求解
func validateBlockedSlot(b *model.BlockedTimeSlot) error {
	if err := b.Validate(); err != nil {
		return apperrors.Wrap(err, apperrors.CodeValidationFail,
			fmt.Sprintf("封锁时段 %d 配置无效", b.ID))
	}
	return nil
}

// loadRoleHours 加载教师行政职务占用的非授课时数
func (r *CatalogRepository) loadRoleHours(ctx context.Context, periodID int64) (map[int64]int, error) {
	query := `
		SELECT teacher_id, COALESCE(SUM(free_hours_per_week), 0)
		FROM role_assignments
		WHERE academic_period_id = $1 AND is_active
		GROUP BY teacher_id`

	rows, err := r.db.QueryContext(ctx, query, periodID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "加载职务时数失败")
	}
	defer rows.Close()

	result := make(map[int64]int)
	for rows.Next() {
		var teacherID int64
		var hours int
		if err := rows.Scan(&teacherID, &hours); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "扫描职务时数失败")
		}
		result[teacherID] = hours
	}
	return result, rows.Err()
}

// loadCareerSubjects 加载培养方案中各专业的课程
func (r *CatalogRepository) loadCareerSubjects(ctx context.Context, periodID int64) (map[int64][]int64, error) {
	query := `
		SELECT sp.career_id, sps.subject_id
		FROM study_plans sp
		JOIN study_plan_subjects sps ON sps.study_plan_id = sp.id
		JOIN subject_groups g ON g.subject_id = sps.subject_id
		WHERE g.academic_period_id = $1 AND sp.is_active
		GROUP BY sp.career_id, sps.subject_id
		ORDER BY sp.career_id, sps.subject_id`

	rows, err := r.db.QueryContext(ctx, query, periodID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "加载培养方案失败")
	}
	defer rows.Close()

	result := make(map[int64][]int64)
	for rows.Next() {
		var careerID, subjectID int64
		if err := rows.Scan(&careerID, &subjectID); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "扫描培养方案失败")
		}
		result[careerID] = append(result[careerID], subjectID)
	}
	return result, rows.Err()
}
