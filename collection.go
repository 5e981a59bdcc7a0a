package surveygo

// Collection is a named group of surveys. Surveys keep a weak back-reference
// to their collection; batch orchestration across a collection is out of
// scope for this package.
type Collection struct {
	Name    string
	Label   string
	surveys map[string]*Survey
}

// NewCollection creates an empty collection.
func NewCollection(name, label string) *Collection {
	return &Collection{
		Name:    name,
		Label:   label,
		surveys: make(map[string]*Survey),
	}
}

// Add registers a survey and sets its back-reference.
func (c *Collection) Add(s *Survey) {
	if c.surveys == nil {
		c.surveys = make(map[string]*Survey)
	}
	c.surveys[s.Name()] = s
	s.collection = c
}

// Get returns the named survey, or false if absent.
func (c *Collection) Get(name string) (*Survey, bool) {
	s, ok := c.surveys[name]
	return s, ok
}
