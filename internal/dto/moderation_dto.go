package dto

type CreateReportRequest struct {
	Reason  string `json:"reason"`
	Details string `json:"details"`
}

type ReportActionResponse struct {
	ReportID uint  `json:"report_id"`
	Affected int64 `json:"affected"`
}

type ReportListResponse struct {
	Reports interface{} `json:"reports"`
	Total   int64       `json:"total"`
	Limit   int         `json:"limit"`
	Offset  int         `json:"offset"`
}

type VerificationResponse struct {
	CategoryID uint `json:"category_id"`
	IsVerified bool `json:"is_verified"`
}

type BanResponse struct {
	UserID   string `json:"user_id"`
	IsActive bool   `json:"is_active"`
}
