package survey

import (
	"github.com/encuestaia/backend/internal/domain/survey"
	"github.com/encuestaia/backend/internal/infrastructure/llm"
)

// trimHistory 超出 token 预算时从最旧的条目开始删除，前 keep 条始终保留
// 返回裁剪后的历史和被删除的条目数
func trimHistory(counter *llm.TokenCounter, history []survey.ConversationEntry, budget, keep int) ([]survey.ConversationEntry, int) {
	if counter == nil || budget <= 0 || len(history) <= keep {
		return history, 0
	}

	costs := make([]int, len(history))
	total := 0
	for i, e := range history {
		costs[i] = counter.CountAll(e.Question, e.Answer)
		total += costs[i]
	}
	if total <= budget {
		return history, 0
	}

	drop := 0
	for i := keep; i < len(history)-1 && total > budget; i++ {
		total -= costs[i]
		drop++
	}
	if drop == 0 {
		return history, 0
	}

	out := make([]survey.ConversationEntry, 0, len(history)-drop)
	out = append(out, history[:keep]...)
	out = append(out, history[keep+drop:]...)
	return out, drop
}
