package model

import "testing"

func TestGenerationConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *GenerationConfig)
		wantErr bool
	}{
		{"默认配置合法", func(c *GenerationConfig) {}, false},
		{"未知算法", func(c *GenerationConfig) { c.Algorithm = "simulated_annealing" }, true},
		{"超时必须为正", func(c *GenerationConfig) { c.MaxExecutionTimeSeconds = 0 }, true},
		{"每日节次上限越界", func(c *GenerationConfig) { c.MaxClassesPerDay = 20 }, true},
		{"单科每日上限越界", func(c *GenerationConfig) { c.MaxSessionsPerSubjectPerDay = 9 }, true},
		{"权重超出范围", func(c *GenerationConfig) { c.WeightTeacherPreferences = 11 }, true},
		{"课间休息可以为零", func(c *GenerationConfig) { c.MinBreakMinutes = 0 }, false},
		{"权重可以全为零", func(c *GenerationConfig) {
			c.WeightMinimizeTeacherGaps = 0
			c.WeightTeacherPreferences = 0
			c.WeightBalancedDistribution = 0
			c.WeightClassroomProximity = 0
			c.WeightMinimizeDailyChanges = 0
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultGenerationConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultGenerationConfig(t *testing.T) {
	cfg := DefaultGenerationConfig()

	if cfg.Algorithm != AlgorithmBacktracking {
		t.Errorf("Algorithm = %s, expected %s", cfg.Algorithm, AlgorithmBacktracking)
	}
	if cfg.MaxExecutionTimeSeconds != 300 {
		t.Errorf("MaxExecutionTimeSeconds = %d, expected 300", cfg.MaxExecutionTimeSeconds)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("默认配置应该通过校验: %v", err)
	}
}

func TestGeneration_CalculateSuccessRate(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		scheduled int
		expected  float64
	}{
		{"全部排入", 40, 40, 100},
		{"部分排入", 40, 30, 75},
		{"无任务不除零", 0, 0, 0},
		{"一节未排", 10, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &Generation{TotalSessions: tt.total, SessionsScheduled: tt.scheduled}
			if result := g.CalculateSuccessRate(); result != tt.expected {
				t.Errorf("CalculateSuccessRate() = %v, expected %v", result, tt.expected)
			}
			if g.SuccessRate != tt.expected {
				t.Errorf("SuccessRate = %v, expected %v", g.SuccessRate, tt.expected)
			}
		})
	}
}

func TestGeneration_IsTerminal(t *testing.T) {
	tests := []struct {
		status   string
		expected bool
	}{
		{StatusPending, false},
		{StatusRunning, false},
		{StatusCompleted, true},
		{StatusPartial, true},
		{StatusFailed, true},
	}

	for _, tt := range tests {
		g := &Generation{Status: tt.status}
		if result := g.IsTerminal(); result != tt.expected {
			t.Errorf("IsTerminal() with status %s = %v, expected %v", tt.status, result, tt.expected)
		}
	}
}

func TestGeneration_BlockingConflicts(t *testing.T) {
	g := &Generation{
		Conflicts: []Conflict{
			{Type: "teacher_unavailable", Blocking: true},
			{Type: "teacher_overload", Blocking: false},
			{Type: "insufficient_capacity", Blocking: true},
		},
	}

	blocking := g.BlockingConflicts()
	if len(blocking) != 2 {
		t.Errorf("BlockingConflicts() 数量 = %d, expected 2", len(blocking))
	}
	for _, c := range blocking {
		if !c.Blocking {
			t.Error("返回的冲突应该都是阻断性的")
		}
	}
}
