package shell_test

import "gtodo/internal/service"

var errTest = &service.StatusError{Op: "create task", Code: 500}
