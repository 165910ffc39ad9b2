package model

// Modality tags for worker results and statistics
const (
	ModalityImage    = "image"
	ModalityVoice    = "voice"
	ModalityText     = "text"
	ModalityExternal = "external"
)

// WorkerResult is one modality result as handed over by the upstream
// dispatcher: a result id, an optional timestamp and zero or more extracted
// attribute bundles. Extra keys inside a bundle are carried through onto
// the entity unmodified.
type WorkerResult struct {
	ID        string     `json:"id,omitempty"`
	UUID      string     `json:"uuid,omitempty"`
	Timestamp string     `json:"timestamp,omitempty"`
	Entities  []Metadata `json:"entities"`
}

// WorkerResults groups the per-modality result lists of one fusion batch.
// Processing order is image, voice, text.
type WorkerResults struct {
	ImageResults []WorkerResult `json:"image_results,omitempty"`
	VoiceResults []WorkerResult `json:"voice_results,omitempty"`
	TextResults  []WorkerResult `json:"text_results,omitempty"`
}

// ExternalRecord is one record from an external data source (call logs,
// transaction exports and the like). Alias fields cover the naming variants
// seen across providers; the first non-empty alias wins.
type ExternalRecord struct {
	Name         string `json:"name,omitempty"`
	UserName     string `json:"user_name,omitempty"`
	Phone        string `json:"phone,omitempty"`
	PhoneNumber  string `json:"phone_number,omitempty"`
	Wechat       string `json:"wechat,omitempty"`
	WechatID     string `json:"wechat_id,omitempty"`
	IDCard       string `json:"id_card,omitempty"`
	IDCardNumber string `json:"id_card_number,omitempty"`
	Account      string `json:"account,omitempty"`
	BankAccount  string `json:"bank_account,omitempty"`

	Timestamp         string   `json:"timestamp,omitempty"`
	Confidence        *float64 `json:"confidence,omitempty"`
	Source            string   `json:"source,omitempty"`
	CounterpartyPhone string   `json:"counterparty_phone,omitempty"`
	Type              string   `json:"type,omitempty"`
	Weight            float64  `json:"weight,omitempty"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// ResolvedName returns the record's name under any alias
func (r *ExternalRecord) ResolvedName() string {
	return firstNonEmpty(r.Name, r.UserName)
}

// ResolvedPhone returns the record's phone under any alias
func (r *ExternalRecord) ResolvedPhone() string {
	return firstNonEmpty(r.Phone, r.PhoneNumber)
}

// ResolvedWechat returns the record's wechat handle under any alias
func (r *ExternalRecord) ResolvedWechat() string {
	return firstNonEmpty(r.Wechat, r.WechatID)
}

// ResolvedIDCard returns the record's id-card number under any alias
func (r *ExternalRecord) ResolvedIDCard() string {
	return firstNonEmpty(r.IDCard, r.IDCardNumber)
}

// ResolvedAccount returns the record's account under any alias
func (r *ExternalRecord) ResolvedAccount() string {
	return firstNonEmpty(r.Account, r.BankAccount)
}
