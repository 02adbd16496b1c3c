package alerts

import "sync"

const PaymentForm = "payment"

// FormErrors keeps the latest field validation errors per form.
type FormErrors struct {
	sync.Mutex
	forms map[string]map[string]string
}

func NewFormErrors() *FormErrors {
	return &FormErrors{
		forms: map[string]map[string]string{},
	}
}

func (f *FormErrors) StopSubmit(form string, fieldErrors map[string]string) {
	f.Lock()
	defer f.Unlock()

	errs := make(map[string]string, len(fieldErrors))
	for k, v := range fieldErrors {
		errs[k] = v
	}
	f.forms[form] = errs
}

func (f *FormErrors) ClearSubmitErrors(form string) {
	f.Lock()
	defer f.Unlock()

	delete(f.forms, form)
}

func (f *FormErrors) Get(form string) map[string]string {
	f.Lock()
	defer f.Unlock()

	result := map[string]string{}
	for k, v := range f.forms[form] {
		result[k] = v
	}
	return result
}
