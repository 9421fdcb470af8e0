package appointment

import (
	"github.com/m04kA/HMS-AppointmentService/pkg/dbmetrics"
)

// DBExecutor *dbmetrics.DB или активная транзакция
type DBExecutor = dbmetrics.DBExecutor
