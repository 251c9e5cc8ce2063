package email

const (
	subjectFirstVisitFmt  = "Thank You for Visiting %s"
	subjectReturnVisitFmt = "Welcome Back! %s"
)
