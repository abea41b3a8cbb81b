package settings

import "github.com/m04kA/SMC-FieldService/pkg/dbmetrics"

type DBExecutor = dbmetrics.DBExecutor
