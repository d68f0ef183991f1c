package components

import "github.com/decker502/shooter/pkg/ecs"

// ItemState 物品状态，决定碰撞、可见性等表现，以及是否参与插值
type ItemState int

const (
	// ItemStatePickupIdle 躺在地上等待拾取
	ItemStatePickupIdle ItemState = iota
	// ItemStateEquipInterpolating 正在飞向玩家
	ItemStateEquipInterpolating
	// ItemStatePickedUp 已进入背包但未装备
	ItemStatePickedUp
	// ItemStateEquipped 已装备在手上
	ItemStateEquipped
	// ItemStateFalling 被丢弃，正在下落
	ItemStateFalling
)

func (s ItemState) String() string {
	switch s {
	case ItemStatePickupIdle:
		return "PickupIdle"
	case ItemStateEquipInterpolating:
		return "EquipInterpolating"
	case ItemStatePickedUp:
		return "PickedUp"
	case ItemStateEquipped:
		return "Equipped"
	case ItemStateFalling:
		return "Falling"
	default:
		return "Unknown"
	}
}

// ItemType 物品类别
type ItemType int

const (
	ItemTypeAmmo ItemType = iota
	ItemTypeWeapon
)

// ItemRarity 物品稀有度
type ItemRarity int

const (
	RarityDamaged ItemRarity = iota
	RarityCommon
	RarityUncommon
	RarityRare
	RarityLegendary
)

// ParseRarity 解析配置中的稀有度名
func ParseRarity(name string) (ItemRarity, bool) {
	switch name {
	case "damaged":
		return RarityDamaged, true
	case "common":
		return RarityCommon, true
	case "uncommon":
		return RarityUncommon, true
	case "rare":
		return RarityRare, true
	case "legendary":
		return RarityLegendary, true
	}
	return RarityCommon, false
}

// String 返回配置中使用的稀有度名
func (r ItemRarity) String() string {
	switch r {
	case RarityDamaged:
		return "damaged"
	case RarityCommon:
		return "common"
	case RarityUncommon:
		return "uncommon"
	case RarityRare:
		return "rare"
	case RarityLegendary:
		return "legendary"
	}
	return "common"
}

// ActiveStars 拾取提示上点亮的星数(1~5)
func (r ItemRarity) ActiveStars() int {
	if r < RarityDamaged {
		return 1
	}
	if r > RarityLegendary {
		return 5
	}
	return int(r) + 1
}

// ItemComponent 可拾取物品的通用数据
type ItemComponent struct {
	Name      string
	Type      ItemType
	State     ItemState
	Rarity    ItemRarity
	SlotIndex int          // 所在背包槽位，-1 表示不在背包中
	Owner     ecs.EntityID // 持有者

	PickupSound string
	EquipSound  string

	// 表现标志，由物品状态驱动
	MeshVisible      bool
	CollisionEnabled bool

	// 拾取提示
	PickupWidgetVisible bool
	InventoryFull       bool // 拾取提示上显示"背包已满"

	// 高亮描边
	CustomDepth          bool
	CanChangeCustomDepth bool
	GlowEnabled          bool
	GlowPulse            float64 // 当前帧发光强度，来自脉冲曲线
}
