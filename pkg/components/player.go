package components

// PlayerComponent 玩家角色标记及相机数据
// 相机与准星由外部系统每帧写入
type PlayerComponent struct {
	CameraYaw   float64 // 跟随相机的偏航角(度)
	CrosshairX  float64 // 准星屏幕坐标
	CrosshairY  float64
	PickupRange float64 // 物品射线检测距离
}
