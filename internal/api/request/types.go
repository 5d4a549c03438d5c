package request

// CreateUserRequest is the request body for creating or renaming a user
type CreateUserRequest struct {
	UID  string `json:"uid"`
	Name string `json:"name"`
}

// CreateRoomRequest is the request body for creating a room
type CreateRoomRequest struct {
	HostID string `json:"hostId"`
	Mode   string `json:"mode,omitempty"`
}

// JoinRoomRequest is the request body for checking a room can be joined
type JoinRoomRequest struct {
	Code string `json:"code"`
	UID  string `json:"uid"`
}
