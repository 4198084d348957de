package inquiry

const (
	TopicName            = "inquiry"
	inquirySubmittedName = TopicName + ".submitted"
)

type InquirySubmitted struct {
	UID   string
	Kind  Kind
	Name  string
	Email string
}

func (e InquirySubmitted) GetEventTypeName() string {
	return inquirySubmittedName
}

func (e InquirySubmitted) GetAggregateName() string {
	return e.UID
}
