package composer

import (
	"sync"

	"github.com/debemdeboas/composer/internal/model"
)

// Form owns one draft for the lifetime of an editing session. Field updates
// arrive as change notifications and may race a submit, so every method
// takes the form lock.
type Form struct {
	mu sync.Mutex

	draft   Draft
	loading bool
	closed  bool

	rules   Rules
	preview *PreviewManager
}

func NewForm(id DraftID, owner model.UserID, rules Rules, previews PreviewStore) *Form {
	return &Form{
		draft:   Draft{ID: id, Owner: owner},
		rules:   rules,
		preview: NewPreviewManager(previews),
	}
}

func (f *Form) ID() DraftID {
	return f.draft.ID
}

func (f *Form) Owner() model.UserID {
	return f.draft.Owner
}

func (f *Form) SetTitle(title string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft.Title = title
}

func (f *Form) SetSubtitle(subtitle string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft.Subtitle = subtitle
}

// SetContent is the rich-text editor's change notification.
func (f *Form) SetContent(markup string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft.Content = markup
}

func (f *Form) SetBibliography(bibliography string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft.Bibliography = bibliography
}

// SelectImage makes file the main image and returns its preview URL.
// A nil file behaves like ClearImage.
func (f *Form) SelectImage(file *ImageFile) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ""
	}
	f.draft.MainImage = file
	return f.preview.Set(file)
}

func (f *Form) ClearImage() {
	f.SelectImage(nil)
}

func (f *Form) PreviewURL() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.preview.Current()
}

// Snapshot returns a copy of the draft. The image bytes are shared, not copied.
func (f *Form) Snapshot() Draft {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft
}

func (f *Form) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loading
}

// Disabled reports whether the submit control should be inactive: any
// required field is empty or a submission is in flight.
func (f *Form) Disabled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loading || len(f.rules.Missing(f.draft)) > 0
}

// Close releases the preview handle. The form stays readable afterwards.
func (f *Form) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.preview.Close()
}

// begin validates the draft and, if it is complete, marks the form loading.
// Loading is left untouched on every failure path.
func (f *Form) begin() (Draft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return Draft{}, ErrFormClosed
	}
	if f.loading {
		return Draft{}, ErrSubmissionInFlight
	}
	if err := f.rules.Validate(f.draft); err != nil {
		return Draft{}, err
	}

	f.loading = true
	return f.draft, nil
}

func (f *Form) finish() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loading = false
}
