package main

type solrResponseHeader struct {
	Status int                    `json:"status,omitempty"`
	QTime  int                    `json:"QTime,omitempty"`
	Params map[string]interface{} `json:"params,omitempty"`
}

type solrResponseDocuments struct {
	NumFound int `json:"numFound,omitempty"`
	Start    int `json:"start,omitempty"`
}

type solrError struct {
	Metadata []string `json:"metadata,omitempty"`
	Msg      string   `json:"msg,omitempty"`
	Code     int      `json:"code,omitempty"`
}

// the parts of a search, update or error response we look at.  the body
// itself is passed through to the client untouched (save for the sort label).
type solrResponse struct {
	ResponseHeader solrResponseHeader    `json:"responseHeader,omitempty"`
	Response       solrResponseDocuments `json:"response,omitempty"`
	Error          solrError             `json:"error,omitempty"`
}

type solrDeleteQuery struct {
	Query string `json:"query"`
}

type solrDeleteCommand struct {
	Delete solrDeleteQuery `json:"delete"`
}
