package model

import (
	_ "embed"
	"github.com/hamba/avro/v2"
)

//go:embed avro/user.avsc
var user []byte

//go:embed avro/task.avsc
var task []byte

//go:embed avro/account.avsc
var account []byte

//go:embed avro/pack.avsc
var pack []byte

var UserSchema, _ = avro.Parse(string(user))
var TaskSchema, _ = avro.Parse(string(task))
var AccountSchema, _ = avro.Parse(string(account))
var PackSchema, _ = avro.Parse(string(pack))

func Validate() error {
	var err error
	UserSchema, err = avro.Parse(string(user))
	if err != nil {
		return err
	}
	TaskSchema, err = avro.Parse(string(task))
	if err != nil {
		return err
	}
	AccountSchema, err = avro.Parse(string(account))
	if err != nil {
		return err
	}
	PackSchema, err = avro.Parse(string(pack))
	if err != nil {
		return err
	}
	return nil
}
