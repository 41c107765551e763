package symbols

// ClassID indexes a class slot. The named constants index Android().
type ClassID int

const (
	ClassClass ClassID = iota
	ClassObject
	ClassString
	ClassActivity
	ClassWindowManager
	ClassDisplay
	ClassPoint
)

// CallableID indexes a callable slot. The named constants index Android().
type CallableID int

const (
	MethodClassGetName CallableID = iota
	MethodObjectToString
	MethodObjectHashCode
	MethodObjectNotify
	MethodObjectNotifyAll
	MethodObjectWait
	MethodObjectWaitJ
	MethodObjectWaitJI
	MethodActivityGetWindowManager
	MethodWindowManagerGetDefaultDisplay
	MethodDisplayGetHeight
	MethodDisplayGetWidth
	CtorPointII
	CtorStringBytes
)

// Android returns the default manifest: the core language classes plus the
// UI classes used to query the display size from an activity.
func Android() *Manifest {
	return &Manifest{
		Classes: []ClassDecl{
			ClassClass:         {Slot: "Class", Name: "java/lang/Class"},
			ClassObject:        {Slot: "Object", Name: "java/lang/Object"},
			ClassString:        {Slot: "String", Name: "java/lang/String"},
			ClassActivity:      {Slot: "Activity", Name: "android/app/Activity"},
			ClassWindowManager: {Slot: "WindowManager", Name: "android/view/WindowManager"},
			ClassDisplay:       {Slot: "Display", Name: "android/view/Display"},
			ClassPoint:         {Slot: "Point", Name: "android/graphics/Point"},
		},
		Callables: []CallableDecl{
			MethodClassGetName:                   {Slot: "Class.getName", Class: "Class", Name: "getName", Signature: "()Ljava/lang/String;"},
			MethodObjectToString:                 {Slot: "Object.toString", Class: "Object", Name: "toString", Signature: "()Ljava/lang/String;"},
			MethodObjectHashCode:                 {Slot: "Object.hashCode", Class: "Object", Name: "hashCode", Signature: "()I"},
			MethodObjectNotify:                   {Slot: "Object.notify", Class: "Object", Name: "notify", Signature: "()V"},
			MethodObjectNotifyAll:                {Slot: "Object.notifyAll", Class: "Object", Name: "notifyAll", Signature: "()V"},
			MethodObjectWait:                     {Slot: "Object.wait", Class: "Object", Name: "wait", Signature: "()V"},
			MethodObjectWaitJ:                    {Slot: "Object.wait(J)", Class: "Object", Name: "wait", Signature: "(J)V"},
			MethodObjectWaitJI:                   {Slot: "Object.wait(JI)", Class: "Object", Name: "wait", Signature: "(JI)V"},
			MethodActivityGetWindowManager:       {Slot: "Activity.getWindowManager", Class: "Activity", Name: "getWindowManager", Signature: "()Landroid/view/WindowManager;"},
			MethodWindowManagerGetDefaultDisplay: {Slot: "WindowManager.getDefaultDisplay", Class: "WindowManager", Name: "getDefaultDisplay", Signature: "()Landroid/view/Display;"},
			MethodDisplayGetHeight:               {Slot: "Display.getHeight", Class: "Display", Name: "getHeight", Signature: "()I"},
			MethodDisplayGetWidth:                {Slot: "Display.getWidth", Class: "Display", Name: "getWidth", Signature: "()I"},
			CtorPointII:                          {Slot: "Point(II)", Class: "Point", Kind: KindConstructor, Signature: "(II)V"},
			CtorStringBytes:                      {Slot: "String([B)", Class: "String", Kind: KindConstructor, Signature: "([B)V"},
		},
	}
}
