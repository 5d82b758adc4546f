package services

import (
	"encoding/json"
)

// UserDevice is one device registered to the signed-in user. Only Id is
// interpreted; the remaining attributes are kept as sent by the backend.
type UserDevice struct {
	ID         string
	Attributes map[string]json.RawMessage
}

const userDeviceIDField = "Id"

func (device *UserDevice) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage

	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	if fields == nil {
		return nil
	}

	var id string

	if raw, ok := fields[userDeviceIDField]; ok {
		if err := json.Unmarshal(raw, &id); err != nil {
			return err
		}

		delete(fields, userDeviceIDField)
	}

	device.ID = id
	device.Attributes = fields

	return nil
}

func (device UserDevice) MarshalJSON() ([]byte, error) {
	fields := make(map[string]interface{}, len(device.Attributes)+1)

	for name, value := range device.Attributes {
		fields[name] = value
	}

	fields[userDeviceIDField] = device.ID

	return json.Marshal(fields)
}

// DeleteDeviceRequest is the body of the device removal call
type DeleteDeviceRequest struct {
	DevicePubkey string `json:"devicePubkey" validate:"required"`
}
