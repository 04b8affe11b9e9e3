package lead

import "github.com/encuestaia/backend/internal/domain/survey"

// ContactInfo 联系人
type ContactInfo struct {
	UserName  string `json:"userName"`
	UserRole  string `json:"userRole"`
	UserEmail string `json:"userEmail"`
	UserPhone string `json:"userPhone"`
}

// CompanyInfo 公司信息
type CompanyInfo struct {
	CompanyName string `json:"companyName"`
	Sector      string `json:"sector"`
}

// SurveyData 对话与报告
type SurveyData struct {
	ConversationHistory []survey.ConversationEntry `json:"conversationHistory"`
	Report              string                     `json:"report"`
}

// Payload 推送到 webhook 的线索数据
type Payload struct {
	ContactInfo ContactInfo `json:"contactInfo"`
	CompanyInfo CompanyInfo `json:"companyInfo"`
	SurveyData  SurveyData  `json:"surveyData"`
}

// NewPayload 由会话构造线索；缺失值为 N/A，电话缺失时为空字符串
func NewPayload(s *survey.Session) *Payload {
	history := s.History
	if history == nil {
		history = []survey.ConversationEntry{}
	}
	return &Payload{
		ContactInfo: ContactInfo{
			UserName:  survey.OrNA(s.FormData.UserName),
			UserRole:  survey.OrNA(s.FormData.UserRole),
			UserEmail: survey.OrNA(s.FormData.UserEmail),
			UserPhone: s.FormData.UserPhone,
		},
		CompanyInfo: CompanyInfo{
			CompanyName: survey.OrNA(s.FormData.CompanyName),
			Sector:      survey.OrNA(s.FormData.Sector),
		},
		SurveyData: SurveyData{
			ConversationHistory: history,
			Report:              s.Report,
		},
	}
}
