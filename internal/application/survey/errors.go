package survey

import "errors"

// ErrGeneration LLM 生成失败（提供商错误、超时或未配置）
var ErrGeneration = errors.New("AI generation failed")
