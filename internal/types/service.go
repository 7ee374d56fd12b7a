package types

// ServiceType describes a monitored deployment environment: its short name
// (the thread-correlation token), the human-readable description rendered
// into messages, the CloudWatch log group its errors land in, and the
// performance threshold used for RAG improvement suggestions.
type ServiceType struct {
	Name        string
	Description string
	LogGroup    string
	Threshold   float64
}

// The known service environments. Descriptions are rendered verbatim into
// Slack messages.
var (
	ServiceTest = ServiceType{Name: "TEST", Description: "[TEST] 테스트 환경", LogGroup: "/aws/TEST/logs", Threshold: 0.7}
	ServiceDev  = ServiceType{Name: "DEV", Description: "[DEV] 개발 환경", LogGroup: "/aws/DEV/logs", Threshold: 0.7}
	ServiceProd = ServiceType{Name: "PROD", Description: "[PROD] 운영 환경", LogGroup: "/aws/PROD/logs", Threshold: 0.7}
)

// ServiceByName looks up a ServiceType by its short name. Unknown names fall
// back to DEV so an unrecognized producer still gets a rendered message
// instead of a dropped alert.
func ServiceByName(name string) ServiceType {
	switch name {
	case ServiceTest.Name:
		return ServiceTest
	case ServiceProd.Name:
		return ServiceProd
	default:
		return ServiceDev
	}
}
