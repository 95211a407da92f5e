package engine

import (
	"testing"

	"github.com/microcrowd/engine/testutil/fixtures"
	"github.com/microcrowd/engine/types"
	"pgregory.net/rapid"
)

// 调度器是会话状态的纯函数：同一输入反复求值必须得到同一结果。
func TestSchedulerDeterministic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		interval := rapid.IntRange(0, 4).Draw(t, "interval")
		roster := rapid.IntRange(1, 6).Draw(t, "roster")
		maxTurns := rapid.IntRange(1, 50).Draw(t, "maxTurns")
		turnIndex := rapid.IntRange(0, 60).Draw(t, "turnIndex")

		conv := fixtures.Conversation("c", roster, maxTurns)
		conv.TurnIndex = turnIndex

		s := NewScheduler(interval)
		first := s.Next(conv)
		for i := 0; i < 3; i++ {
			if got := s.Next(conv); got != first {
				t.Fatalf("selection changed between calls: %+v vs %+v", first, got)
			}
		}
	})
}

// 索引达到 max_turns 时且仅在此时返回终止标记。
func TestSchedulerTerminalBoundary(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		interval := rapid.IntRange(0, 3).Draw(t, "interval")
		roster := rapid.IntRange(1, 5).Draw(t, "roster")
		maxTurns := rapid.IntRange(1, 40).Draw(t, "maxTurns")
		turnIndex := rapid.IntRange(0, 80).Draw(t, "turnIndex")

		conv := fixtures.Conversation("c", roster, maxTurns)
		conv.TurnIndex = turnIndex

		sel := NewScheduler(interval).Next(conv)
		wantTerminal := turnIndex >= maxTurns
		if sel.Terminal != wantTerminal {
			t.Fatalf("turnIndex=%d maxTurns=%d: terminal=%v, want %v",
				turnIndex, maxTurns, sel.Terminal, wantTerminal)
		}
		if !sel.Terminal && sel.Speaker.Kind == "" {
			t.Fatalf("non-terminal selection without a speaker")
		}
	})
}

// 启用主持人穿插时：块首必为主持人，块内每个 persona 恰好出现 interval 次。
func TestSchedulerBlockCoverage(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		interval := rapid.IntRange(1, 3).Draw(t, "interval")
		roster := rapid.IntRange(1, 5).Draw(t, "roster")

		blockLen := interval*roster + 1
		conv := fixtures.Conversation("c", roster, blockLen*3)
		s := NewScheduler(interval)

		counts := make(map[string]int)
		moderatorTurns := 0
		for i := 0; i < blockLen; i++ {
			conv.TurnIndex = i
			sel := s.Next(conv)
			if sel.Terminal {
				t.Fatalf("unexpected terminal at index %d", i)
			}
			switch sel.Speaker.Kind {
			case types.SpeakerModerator:
				moderatorTurns++
				if i != 0 {
					t.Fatalf("moderator scheduled mid-block at index %d", i)
				}
			case types.SpeakerPersona:
				counts[sel.Speaker.PersonaID]++
			}
		}

		if moderatorTurns != 1 {
			t.Fatalf("want exactly 1 moderator turn per block, got %d", moderatorTurns)
		}
		if len(counts) != roster {
			t.Fatalf("want all %d personas scheduled, got %d", roster, len(counts))
		}
		for id, n := range counts {
			if n != interval {
				t.Fatalf("persona %s scheduled %d times in a block, want %d", id, n, interval)
			}
		}
	})
}
