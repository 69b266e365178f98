package telephony

import (
	"encoding/xml"
)

// Response is a TwiML document. Verbs render in order.
type Response struct {
	XMLName xml.Name `xml:"Response"`
	Verbs   []any
}

type Say struct {
	XMLName  xml.Name `xml:"Say"`
	Voice    string   `xml:"voice,attr,omitempty"`
	Language string   `xml:"language,attr,omitempty"`
	Text     string   `xml:",chardata"`
}

type Gather struct {
	XMLName       xml.Name `xml:"Gather"`
	Input         string   `xml:"input,attr"`
	Action        string   `xml:"action,attr"`
	Method        string   `xml:"method,attr"`
	SpeechTimeout string   `xml:"speechTimeout,attr,omitempty"`
	SpeechModel   string   `xml:"speechModel,attr,omitempty"`
	Language      string   `xml:"language,attr,omitempty"`
	Verbs         []any
}

type Hangup struct {
	XMLName xml.Name `xml:"Hangup"`
}

type Redirect struct {
	XMLName xml.Name `xml:"Redirect"`
	Method  string   `xml:"method,attr,omitempty"`
	URL     string   `xml:",chardata"`
}

// Marshal renders the document with the XML declaration Twilio expects.
func (r Response) Marshal() ([]byte, error) {
	body, err := xml.Marshal(r)
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}

// Voice holds the speech settings shared by every document.
type Voice struct {
	Name           string
	Language       string
	SpeechLanguage string
	ActionURL      string
}

func (v Voice) say(text string) Say {
	return Say{Voice: v.Name, Language: v.Language, Text: text}
}

// Prompt speaks text and listens for the caller's next utterance. If the
// caller stays silent the call is redirected back to the gather action.
func (v Voice) Prompt(text string) Response {
	return Response{Verbs: []any{
		Gather{
			Input:         "speech",
			Action:        v.ActionURL,
			Method:        "POST",
			SpeechTimeout: "auto",
			SpeechModel:   "phone_call",
			Language:      v.SpeechLanguage,
			Verbs:         []any{v.say(text)},
		},
		Redirect{Method: "POST", URL: v.ActionURL},
	}}
}

// Farewell speaks each line in turn and hangs up.
func (v Voice) Farewell(lines ...string) Response {
	verbs := make([]any, 0, len(lines)+1)
	for _, line := range lines {
		if line != "" {
			verbs = append(verbs, v.say(line))
		}
	}
	return Response{Verbs: append(verbs, Hangup{})}
}
